package scoring

import (
	"math"
	"sort"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/access"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

type GroupStats struct {
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

type RankedStudent struct {
	MemberID int64   `json:"member_id"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

type Report struct {
	Year         int                   `json:"year"`
	TotalScores  int                   `json:"total_scores"`
	AverageScore float64               `json:"average_score"`
	BySubject    map[string]GroupStats `json:"by_subject"`
	ByMonth      map[int]GroupStats    `json:"by_month"`
	TopStudents  []RankedStudent       `json:"top_students"`
}

type accumulator struct {
	count int
	total float64
}

func (a *accumulator) add(pct float64) {
	a.count++
	a.total += pct
}

func (a *accumulator) avg() float64 {
	if a.count == 0 {
		return 0
	}
	return round2(a.total / float64(a.count))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// BuildReport aggregates an already visibility-filtered score set for one
// calendar year: per-subject and per-month counts and averages on the 0..10
// scale, plus the top students ranked by average. Ties are broken by
// display name ascending, then member id, so the ranking is deterministic.
func BuildReport(scores []models.ScoreDetail, year, topSize int) *Report {
	report := &Report{
		Year:        year,
		BySubject:   make(map[string]GroupStats),
		ByMonth:     make(map[int]GroupStats),
		TopStudents: []RankedStudent{},
	}

	var overall accumulator
	bySubject := make(map[string]*accumulator)
	byMonth := make(map[int]*accumulator)
	byMember := make(map[int64]*accumulator)
	memberNames := make(map[int64]string)

	for _, s := range scores {
		at := s.EffectiveTime()
		if at.Year() != year {
			continue
		}
		pct := access.Pct(s.RawScore, s.MaxScore)

		overall.add(pct)

		if bySubject[s.Subject] == nil {
			bySubject[s.Subject] = &accumulator{}
		}
		bySubject[s.Subject].add(pct)

		month := int(at.Month())
		if byMonth[month] == nil {
			byMonth[month] = &accumulator{}
		}
		byMonth[month].add(pct)

		if byMember[s.MemberID] == nil {
			byMember[s.MemberID] = &accumulator{}
		}
		byMember[s.MemberID].add(pct)
		memberNames[s.MemberID] = s.MemberName
	}

	report.TotalScores = overall.count
	report.AverageScore = overall.avg()

	for subject, acc := range bySubject {
		report.BySubject[subject] = GroupStats{Count: acc.count, AvgScore: acc.avg()}
	}
	for month, acc := range byMonth {
		report.ByMonth[month] = GroupStats{Count: acc.count, AvgScore: acc.avg()}
	}

	ranked := make([]RankedStudent, 0, len(byMember))
	for memberID, acc := range byMember {
		ranked = append(ranked, RankedStudent{
			MemberID: memberID,
			Name:     memberNames[memberID],
			Count:    acc.count,
			AvgScore: acc.avg(),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgScore != ranked[j].AvgScore {
			return ranked[i].AvgScore > ranked[j].AvgScore
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].MemberID < ranked[j].MemberID
	})
	if topSize > 0 && len(ranked) > topSize {
		ranked = ranked[:topSize]
	}
	report.TopStudents = ranked

	return report
}

// Years returns the distinct years present in a score set, descending.
func Years(scores []models.ScoreDetail) []int {
	seen := make(map[int]bool)
	for _, s := range scores {
		seen[s.EffectiveTime().Year()] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
