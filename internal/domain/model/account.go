package model

// Account is an organization whose PR health is scored.
type Account struct {
	ID               string
	Name             string
	Industry         string
	Active           bool
	Followers        map[string]int64 // per channel
	NewsroomTraffic  int64
	DeclaredAudience *int64
}

// FollowerTotal sums followers across all channels.
func (a Account) FollowerTotal() int64 {
	var total int64
	for _, n := range a.Followers {
		total += n
	}
	return total
}

// HasDeclaredAudience reports whether a positive audience figure was declared.
func (a Account) HasDeclaredAudience() bool {
	return a.DeclaredAudience != nil && *a.DeclaredAudience > 0
}

// PeerReach is the approximate reach of another account in the same industry.
type PeerReach struct {
	AccountID string
	Reach     float64
}
