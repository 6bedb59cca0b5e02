package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"

	"smartrate/internal/domain"
	"smartrate/internal/ml/artifact"
	"smartrate/internal/ml/feature"
	"smartrate/internal/ml/forest"
)

// Fixed split so repeated runs over the same data produce comparable
// evaluation numbers.
const (
	trainTestRatio = 0.8
	splitSeed      = 42
)

// TrainReport carries the diagnostics of one training run. The metrics are
// informational; there is no minimum-accuracy gate.
type TrainReport struct {
	RawRows   int
	TrainRows int
	TestRows  int
	Features  int
	MAE       float64
	R2        float64
}

// TrainingService is the offline batch job: load history, derive features,
// fit, evaluate, persist. Not safe for concurrent runs against the same
// artifact directory; callers serialize training externally.
type TrainingService struct {
	repo  domain.BookingRepository
	store *artifact.Store
	cfg   forest.Config
}

func NewTrainingService(repo domain.BookingRepository, store *artifact.Store, cfg forest.Config) *TrainingService {
	return &TrainingService{repo: repo, store: store, cfg: cfg}
}

func (s *TrainingService) Train(ctx context.Context) (TrainReport, error) {
	rows, err := s.repo.LoadBookingDataset(ctx)
	if err != nil {
		return TrainReport{}, fmt.Errorf("%w: load booking dataset: %v", domain.ErrDataAccess, err)
	}
	log.Info().Int("rows", len(rows)).Msg("booking dataset loaded")

	set := feature.BuildTrainingSet(rows)
	if len(set.X) == 0 {
		return TrainReport{}, fmt.Errorf("%w: no confirmed bookings to train on", domain.ErrDataAccess)
	}
	log.Info().
		Int("training_rows", len(set.X)).
		Int("features", len(set.Columns)).
		Msg("features derived")

	trainIdx, testIdx := splitIndices(len(set.X), trainTestRatio, splitSeed)
	trainX, trainY := subset(set.X, set.Y, trainIdx)
	testX, testY := subset(set.X, set.Y, testIdx)

	model, err := forest.Fit(trainX, trainY, s.cfg)
	if err != nil {
		return TrainReport{}, fmt.Errorf("fit model: %w", err)
	}

	report := TrainReport{
		RawRows:   len(rows),
		TrainRows: len(trainX),
		TestRows:  len(testX),
		Features:  len(set.Columns),
	}
	if len(testX) > 0 {
		preds := make([]float64, len(testX))
		for i, row := range testX {
			p, perr := model.Predict(row)
			if perr != nil {
				return TrainReport{}, fmt.Errorf("evaluate model: %w", perr)
			}
			preds[i] = p
		}
		report.MAE = meanAbsoluteError(testY, preds)
		report.R2 = r2Score(testY, preds)
	}
	log.Info().
		Float64("mae", report.MAE).
		Float64("r2", report.R2).
		Msg("model evaluated")

	if err := s.store.Save(model, set.Columns); err != nil {
		return TrainReport{}, fmt.Errorf("save artifact: %w", err)
	}
	return report, nil
}

// splitIndices shuffles 0..n-1 with the fixed seed and cuts at ratio.
func splitIndices(n int, ratio float64, seed int64) (train, test []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)
	cut := int(float64(n) * ratio)
	return idx[:cut], idx[cut:]
}

func subset(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	sx := make([][]float64, len(idx))
	sy := make([]float64, len(idx))
	for i, j := range idx {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

func meanAbsoluteError(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	s := 0.0
	for i := range actual {
		s += math.Abs(actual[i] - predicted[i])
	}
	return s / float64(len(actual))
}

// r2Score is the coefficient of determination; 1 is perfect, 0 matches
// always predicting the mean, negative is worse than that.
func r2Score(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
		t := actual[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}
