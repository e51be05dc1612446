// Package access holds the two pure pieces of the permission model: the
// mutation gate shared by every write path, and the row-level visibility
// filter applied to score reads. Write permission and read visibility are
// deliberately distinct rules.
package access

import (
	"strings"
	"time"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

// CanMutate decides whether an actor may mutate a resource scoped to
// resourceSubject. Admins always may, teachers only within their own
// configured subject, students never. Unknown roles and teachers without a
// subject fail closed.
func CanMutate(role models.Role, actorSubject, resourceSubject string) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleTeacher:
		return actorSubject != "" && actorSubject == resourceSubject
	default:
		return false
	}
}

// Pct normalizes a raw score onto the 0..10 scale used for averaging and
// the award threshold, regardless of the original scale.
func Pct(raw, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return raw / max * 10
}

// StudentVisible reports whether a student may see one of their own scores.
// Past years expose only official contest results (label carries the
// configured marker); the current year exposes any label, but only
// award-level results (pct at or above awardPct).
func StudentVisible(s models.ScoreDetail, now time.Time, officialMarker string, awardPct float64) bool {
	scoreYear := s.EffectiveTime().Year()
	if scoreYear < now.UTC().Year() {
		return officialMarker != "" && strings.Contains(s.Label, officialMarker)
	}
	return Pct(s.RawScore, s.MaxScore) >= awardPct
}

// FilterForStudent narrows a score set to what the owning student may see.
// Rows belonging to other accounts never pass, whatever their label or
// score.
func FilterForStudent(scores []models.ScoreDetail, accountID int64, now time.Time, officialMarker string, awardPct float64) []models.ScoreDetail {
	visible := make([]models.ScoreDetail, 0, len(scores))
	for _, s := range scores {
		if s.MemberAccountID != accountID {
			continue
		}
		if StudentVisible(s, now, officialMarker, awardPct) {
			visible = append(visible, s)
		}
	}
	return visible
}
