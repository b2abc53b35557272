package store

// Member is a member profile row. Birthday is stored as a YYYYMMDD string.
type Member struct {
	Name     string
	Sex      string
	Birthday string
}

// ProductMatch is one similarity search hit: a stable product identifier and
// its distance to the query vector (smaller is closer).
type ProductMatch struct {
	ID       string
	Distance float32
}
