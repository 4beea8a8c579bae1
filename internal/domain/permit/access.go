package permit

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Authorize allows an action on a package only for its owner. Every action,
// including reads and writes of the package's documents and checklist
// progress, goes through the same check.
func Authorize(userID string, pkg *Package, action Action) error {
	if pkg == nil {
		return ErrPackageNotFound
	}
	if userID == "" || pkg.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}
