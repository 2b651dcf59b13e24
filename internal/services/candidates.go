package services

import "crewdeploy-backend/internal/models"

// Candidate scoring. Default-position candidates score in the 1000+ band so
// they always dominate training-based candidates (≤ ~150); training
// candidates are only generated when a staff member has no usable default.

const (
	defaultCandidateBaseScore  = 1000.0
	trainingCandidateBaseScore = 100.0
	signOffBonus               = 20.0
	closingValidatedBonus      = 100.0
	closingUnvalidatedPenalty  = 500.0
)

// CandidateSource identifies which generator produced a candidate
type CandidateSource string

const (
	CandidateSourceDefault  CandidateSource = "default"
	CandidateSourceTraining CandidateSource = "training"
)

// TrainingDetail carries the fields that only exist on training-sourced
// candidates, so default candidates cannot accidentally expose them
type TrainingDetail struct {
	Station   string  `json:"station"`
	Rating    float64 `json:"rating"`
	SignedOff bool    `json:"signed_off"`
}

// Candidate is a scored (position, rationale) pairing considered for one
// staff member. Training is nil for default-position candidates.
type Candidate struct {
	Position         string          `json:"position"`
	Score            float64         `json:"score"`
	Source           CandidateSource `json:"source"`
	Training         *TrainingDetail `json:"training,omitempty"`
	ClosingRequired  bool            `json:"closing_required,omitempty"`
	ClosingValidated bool            `json:"closing_validated,omitempty"`
}

// generateCandidates produces the merged candidate list for one staff
// member. Default-position candidates win outright: training-based
// candidates are only consulted when the default source yields nothing.
func (e *Engine) generateCandidates(staffID, date, shiftType string, config AssignmentConfig) ([]Candidate, error) {
	if config.UseDefaultPositions {
		defaults, err := e.defaultPositionCandidates(staffID, date, shiftType)
		if err != nil {
			return nil, err
		}
		if len(defaults) > 0 {
			return defaults, nil
		}
	}

	if config.UseTrainingData {
		return e.trainingCandidates(staffID, date, shiftType, config)
	}

	return []Candidate{}, nil
}

func (e *Engine) defaultPositionCandidates(staffID, date, shiftType string) ([]Candidate, error) {
	records, err := e.store.GetStaffDefaultPositions(staffID)
	if err != nil {
		return nil, err
	}

	candidates := []Candidate{}
	for _, record := range records {
		if !matchesShiftType(record.ShiftType, shiftType) {
			continue
		}

		available, err := e.IsPositionAvailable(record.Position, date, shiftType)
		if err != nil {
			return nil, err
		}
		if !available {
			continue
		}

		candidates = append(candidates, Candidate{
			Position: record.Position,
			Score:    defaultCandidateBaseScore + float64(10-record.Priority),
			Source:   CandidateSourceDefault,
		})
	}

	return candidates, nil
}

func (e *Engine) trainingCandidates(staffID, date, shiftType string, config AssignmentConfig) ([]Candidate, error) {
	stations, err := e.store.GetStaffTrainingStations(staffID)
	if err != nil {
		return nil, err
	}

	candidates := []Candidate{}
	for _, station := range stations {
		mappings, err := e.store.GetStationPositionMappings(station.Station)
		if err != nil {
			return nil, err
		}

		for _, mapping := range mappings {
			available, err := e.IsPositionAvailable(mapping.Position, date, shiftType)
			if err != nil {
				return nil, err
			}
			if !available {
				continue
			}

			score := trainingCandidateBaseScore
			rating := 0.0

			if config.UseRankings {
				rankings, err := e.store.GetStaffRankings(staffID, station.Station)
				if err != nil {
					return nil, err
				}
				if len(rankings) > 0 {
					rating = averageRating(rankings)
					if rating < config.MinRankingThreshold {
						continue
					}
					score += rating * 10
				}
			}

			signedOff, err := e.store.HasStaffSignOff(staffID, station.Station)
			if err != nil {
				return nil, err
			}
			if signedOff {
				score += signOffBonus
			} else if config.PreferSignedOffOnly {
				continue
			}

			// Lower mapping priority number = preferred = smaller penalty
			score -= float64(mapping.Priority) * 5

			candidates = append(candidates, Candidate{
				Position: mapping.Position,
				Score:    score,
				Source:   CandidateSourceTraining,
				Training: &TrainingDetail{
					Station:   station.Station,
					Rating:    rating,
					SignedOff: signedOff,
				},
			})
		}
	}

	return candidates, nil
}

func averageRating(rankings []models.StaffRanking) float64 {
	if len(rankings) == 0 {
		return 0
	}
	total := 0.0
	for _, ranking := range rankings {
		total += ranking.Rating
	}
	return total / float64(len(rankings))
}
