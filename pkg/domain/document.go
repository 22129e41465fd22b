package domain

// DocumentKind names a class of supporting document a scheme may require,
// e.g. "Aadhaar Card" or "Land Records (Khatauni)". Kinds are reference data
// owned by the scheme catalog; applications carry one record per kind.
type DocumentKind string

func (k DocumentKind) String() string { return string(k) }
