package store

// ScoreFilter narrows score listings at the SQL level. Zero values mean "no
// restriction". The student year/label/award rules are applied in Go by the
// access package on top of the AccountID restriction.
type ScoreFilter struct {
	Subject   string
	AccountID int64
	MemberID  int64
}
