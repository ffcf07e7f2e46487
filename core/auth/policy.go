package auth

// CanAccess is the ownership policy consulted by every mutating operation:
// admins may act on anything, everyone else only on resources they own.
// Callers must pass the owner as currently recorded in the store, never a
// client-supplied value.
func CanAccess(callerID int64, admin bool, ownerID int64) bool {
	return admin || callerID == ownerID
}
