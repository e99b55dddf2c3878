package domain

// Identity is the verified caller attached to a request after authentication.
type Identity struct {
	SubjectID int64
	Email     string
}

// Valid reports whether the identity carries both claims required for a session.
func (i Identity) Valid() bool {
	return i.SubjectID > 0 && i.Email != ""
}
