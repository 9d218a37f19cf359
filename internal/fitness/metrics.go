package fitness

import (
	"strings"
	"time"

	fitnessapi "google.golang.org/api/fitness/v1"
)

// dateLayout renders a bucket start as a calendar day, matching the
// "Mon Jan 02 2006" shape the dashboard consumes.
const dateLayout = "Mon Jan 02 2006"

const (
	stepSourceMarker      = "step_count"
	heartRateSourceMarker = "heart_rate"
)

// DailyMetric is one day of normalized activity data. Missing upstream
// data defaults to zero values rather than being omitted.
type DailyMetric struct {
	Date      string  `json:"date"`
	StepCount int64   `json:"step_count"`
	HeartRate float64 `json:"heart_rate"`
}

// NormalizeBuckets converts aggregation buckets into one DailyMetric per
// bucket, preserving upstream ordering. It is a pure function: the same
// input always yields the same output.
func NormalizeBuckets(buckets []*fitnessapi.AggregateBucket) []DailyMetric {
	metrics := make([]DailyMetric, 0, len(buckets))

	for _, bucket := range buckets {
		metric := DailyMetric{
			Date: time.UnixMilli(bucket.StartTimeMillis).Format(dateLayout),
		}

		if steps := findDataset(bucket.Dataset, stepSourceMarker); steps != nil {
			metric.StepCount = firstIntValue(steps)
		}
		if heartRate := findDataset(bucket.Dataset, heartRateSourceMarker); heartRate != nil {
			metric.HeartRate = firstFloatValue(heartRate)
		}

		metrics = append(metrics, metric)
	}

	return metrics
}

// findDataset returns the first sub-dataset whose source identifier
// contains the given marker, or nil when absent.
func findDataset(datasets []*fitnessapi.Dataset, marker string) *fitnessapi.Dataset {
	for _, dataset := range datasets {
		if dataset != nil && strings.Contains(dataset.DataSourceId, marker) {
			return dataset
		}
	}
	return nil
}

func firstIntValue(dataset *fitnessapi.Dataset) int64 {
	if len(dataset.Point) == 0 || len(dataset.Point[0].Value) == 0 {
		return 0
	}
	return dataset.Point[0].Value[0].IntVal
}

func firstFloatValue(dataset *fitnessapi.Dataset) float64 {
	if len(dataset.Point) == 0 || len(dataset.Point[0].Value) == 0 {
		return 0
	}
	return dataset.Point[0].Value[0].FpVal
}
