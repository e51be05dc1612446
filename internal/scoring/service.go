// Package scoring holds the score repository guards and the statistics
// aggregator. Writes go through the shared mutation gate; reads go through
// the role-dependent visibility filter, which is a separate, weaker rule.
package scoring

import (
	"math"
	"time"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/access"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

// Config carries the scoring knobs. The official label marker identifies
// contest results by substring; the repository itself never hardcodes
// contest names.
type Config struct {
	DefaultMaxScore     float64
	AwardThreshold      float64
	OfficialLabelMarker string
	TopRankingSize      int
}

type Service struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

func NewService(s store.Store, cfg Config) *Service {
	return &Service{
		store: s,
		cfg:   cfg,
		now:   time.Now,
	}
}

type ScoreInput struct {
	MemberID int64   `json:"member_id"`
	Label    string  `json:"label"`
	RawScore float64 `json:"raw_score"`
	MaxScore float64 `json:"max_score"`
	ExamDate int64   `json:"exam_date"`
	Notes    string  `json:"notes"`
}

// UpdateScoreInput uses pointers where zero is a meaningful value, so a
// partial update can leave fields untouched.
type UpdateScoreInput struct {
	Label    string   `json:"label"`
	RawScore *float64 `json:"raw_score"`
	MaxScore float64  `json:"max_score"`
	ExamDate int64    `json:"exam_date"`
	Notes    *string  `json:"notes"`
}

func validScoreRange(raw, max float64) error {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return apperrors.Validation("score must be a finite number")
	}
	if raw < 0 {
		return apperrors.Validation("score cannot be negative")
	}
	if raw > max {
		return apperrors.Validation("score %.2f exceeds maximum %.2f", raw, max)
	}
	return nil
}

// Create records a test result for a member. MaxScore defaults to the
// configured scale (10) when the caller leaves it at zero; an official
// contest on a different scale supplies its own maximum.
func (s *Service) Create(actor models.Actor, input ScoreInput) (*models.Score, error) {
	member, err := s.store.GetMemberDetail(input.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NotFound("member %d not found", input.MemberID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, member.Subject) {
		return nil, apperrors.Permission("not allowed to record scores for %s teams", member.Subject)
	}

	max := input.MaxScore
	if max == 0 {
		max = s.cfg.DefaultMaxScore
	}
	if max <= 0 {
		return nil, apperrors.Validation("max score must be positive")
	}
	if err := validScoreRange(input.RawScore, max); err != nil {
		return nil, err
	}

	score := &models.Score{
		MemberID:   input.MemberID,
		Label:      input.Label,
		RawScore:   input.RawScore,
		MaxScore:   max,
		ExamDate:   input.ExamDate,
		Notes:      input.Notes,
		RecordedBy: actor.AccountID,
		CreatedAt:  s.now().Unix(),
	}
	if err := score.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid score")
	}

	if err := s.store.CreateScore(score); err != nil {
		return nil, err
	}
	return score, nil
}

// Update edits a score; empty or nil input fields keep their stored value.
func (s *Service) Update(actor models.Actor, scoreID int64, input UpdateScoreInput) (*models.Score, error) {
	detail, err := s.store.GetScoreDetail(scoreID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NotFound("score %d not found", scoreID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, detail.Subject) {
		return nil, apperrors.Permission("not allowed to edit scores for %s teams", detail.Subject)
	}

	score := detail.Score
	if input.Label != "" {
		score.Label = input.Label
	}
	if input.RawScore != nil {
		score.RawScore = *input.RawScore
	}
	if input.MaxScore != 0 {
		score.MaxScore = input.MaxScore
	}
	if input.ExamDate != 0 {
		score.ExamDate = input.ExamDate
	}
	if input.Notes != nil {
		score.Notes = *input.Notes
	}
	if err := validScoreRange(score.RawScore, score.MaxScore); err != nil {
		return nil, err
	}

	if err := s.store.UpdateScore(&score); err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *Service) Delete(actor models.Actor, scoreID int64) error {
	detail, err := s.store.GetScoreDetail(scoreID)
	if err != nil {
		return err
	}
	if detail == nil {
		return apperrors.NotFound("score %d not found", scoreID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, detail.Subject) {
		return apperrors.Permission("not allowed to delete scores for %s teams", detail.Subject)
	}
	return s.store.DeleteScore(scoreID)
}

// visibleScores is the read path every listing and report goes through:
// admins see everything, teachers their subject, students their own rows
// further narrowed by the year/label/award rules.
func (s *Service) visibleScores(actor models.Actor, f store.ScoreFilter) ([]models.ScoreDetail, error) {
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		if actor.Subject == "" {
			return []models.ScoreDetail{}, nil
		}
		f.Subject = actor.Subject
	case models.RoleStudent:
		f.AccountID = actor.AccountID
	default:
		return nil, apperrors.Permission("unknown role %q", actor.Role)
	}

	scores, err := s.store.ListScores(f)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleStudent {
		scores = access.FilterForStudent(scores, actor.AccountID, s.now(), s.cfg.OfficialLabelMarker, s.cfg.AwardThreshold)
	}
	return scores, nil
}

// List returns the actor's visible scores, each enriched with the subject
// teacher's identity.
func (s *Service) List(actor models.Actor) ([]models.ScoreView, error) {
	scores, err := s.visibleScores(actor, store.ScoreFilter{})
	if err != nil {
		return nil, err
	}
	return s.enrich(scores)
}

// ListByMember narrows the visible set to one member's scores.
func (s *Service) ListByMember(actor models.Actor, memberID int64) ([]models.ScoreView, error) {
	member, err := s.store.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NotFound("member %d not found", memberID)
	}
	scores, err := s.visibleScores(actor, store.ScoreFilter{MemberID: memberID})
	if err != nil {
		return nil, err
	}
	return s.enrich(scores)
}

// enrich attaches the subject teacher (display name and contact) to each
// score by matching the score's team subject against the teacher roster.
func (s *Service) enrich(scores []models.ScoreDetail) ([]models.ScoreView, error) {
	profiles, err := s.store.ListTeacherProfiles()
	if err != nil {
		return nil, err
	}
	bySubject := make(map[string]*models.SubjectTeacher)
	for _, p := range profiles {
		if _, ok := bySubject[p.Subject]; !ok {
			bySubject[p.Subject] = &models.SubjectTeacher{Name: p.FullName, Email: p.Email}
		}
	}

	views := make([]models.ScoreView, 0, len(scores))
	for _, sc := range scores {
		views = append(views, models.ScoreView{
			ScoreDetail:    sc,
			SubjectTeacher: bySubject[sc.Subject],
		})
	}
	return views, nil
}

// Report aggregates the actor's visible scores for one calendar year.
func (s *Service) Report(actor models.Actor, year int) (*Report, error) {
	scores, err := s.visibleScores(actor, store.ScoreFilter{})
	if err != nil {
		return nil, err
	}
	return BuildReport(scores, year, s.cfg.TopRankingSize), nil
}

// Years lists the distinct years present in the actor's visible scores,
// most recent first.
func (s *Service) Years(actor models.Actor) ([]int, error) {
	scores, err := s.visibleScores(actor, store.ScoreFilter{})
	if err != nil {
		return nil, err
	}
	return Years(scores), nil
}
