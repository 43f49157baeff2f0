package model

// Identity is the resolved caller established by the upstream identity
// provider. The core never validates credentials beyond the bearer token
// signature; roles are read-only here.
type Identity struct {
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsTeacher bool   `json:"is_teacher"`
}

// CanTest reports whether the identity may request arbitrary tasks in
// testing mode.
func (i Identity) CanTest() bool {
	return i.IsAdmin || i.IsTeacher
}
