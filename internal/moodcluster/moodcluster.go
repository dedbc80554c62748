// Package moodcluster groups scored tracks into listening moods using
// k-means over the affect plane.
package moodcluster

import (
	"log/slog"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/kmorowski/lyricmood/internal/sentiment"
)

// Config holds mood clustering parameters.
type Config struct {
	NumClusters    int // number of moods to form (default: 3)
	MinClusterSize int // smaller clusters become outliers
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 3,
	}
}

// Centroid is the average affect position of a mood group.
type Centroid struct {
	Valence  float64 `json:"valence"`
	Arousal  float64 `json:"arousal"`
	Polarity float64 `json:"polarity"`
}

// Group is a cluster of tracks that share an emotional register.
type Group struct {
	Name     string   `json:"name"`
	TrackIDs []string `json:"track_ids"`
	Centroid Centroid `json:"centroid"`
}

// scoreObservation wraps a score record to satisfy clusters.Observation.
type scoreObservation struct {
	rec    *sentiment.Record
	coords clusters.Coordinates
}

func (o scoreObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o scoreObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// coordinates orders the clustered dimensions: valence, arousal, polarity.
func coordinates(rec *sentiment.Record) clusters.Coordinates {
	return clusters.Coordinates{rec.Valence, rec.Arousal, rec.Polarity}
}

// Cluster partitions score records into mood groups. Records that land in
// clusters below the minimum size are returned as outlier track IDs.
// Zero-confidence records carry no signal and are excluded up front.
func Cluster(recs []sentiment.Record, cfg Config, logger *slog.Logger) ([]Group, []string) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(recs) == 0 {
		return nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	var scored []*sentiment.Record
	var outliers []string
	for i := range recs {
		rec := &recs[i]
		if rec.Confidence > 0 {
			scored = append(scored, rec)
		} else {
			outliers = append(outliers, rec.TrackID)
		}
	}

	// Fewer usable records than clusters means no meaningful partition.
	if len(scored) < cfg.NumClusters {
		for _, rec := range scored {
			outliers = append(outliers, rec.TrackID)
		}
		return nil, outliers
	}

	var obs clusters.Observations
	for _, rec := range scored {
		obs = append(obs, scoreObservation{rec: rec, coords: coordinates(rec)})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		logger.Warn("k-means partition failed, treating all tracks as outliers", "error", err)
		for _, rec := range scored {
			outliers = append(outliers, rec.TrackID)
		}
		return nil, outliers
	}

	var groups []Group
	for _, cluster := range result {
		var trackIDs []string
		for _, o := range cluster.Observations {
			if so, ok := o.(scoreObservation); ok {
				trackIDs = append(trackIDs, so.rec.TrackID)
			}
		}

		if len(trackIDs) < cfg.MinClusterSize {
			outliers = append(outliers, trackIDs...)
			continue
		}

		slices.Sort(trackIDs)

		centroid := Centroid{
			Valence:  cluster.Center[0],
			Arousal:  cluster.Center[1],
			Polarity: cluster.Center[2],
		}

		groups = append(groups, Group{
			Name:     moodName(centroid),
			TrackIDs: trackIDs,
			Centroid: centroid,
		})
	}

	// Largest moods first.
	slices.SortFunc(groups, func(a, b Group) int {
		return len(b.TrackIDs) - len(a.TrackIDs)
	})

	return groups, outliers
}
