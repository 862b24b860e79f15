package roadmatch

import (
	"github.com/jengzang/ecogo-motion/internal/models"
)

// Speed thresholds in km/h
const (
	walkCycleKmh   = 10.0
	cycleBusKmh    = 30.0
	busDriveKmh    = 55.0
	hysteresisKmh  = 5.0
	railMinKmh     = 25.0
	railMaxKmh     = 120.0
	railMaxStdKmh  = 15.0
	motorwayMinKmh = 50.0
	trunkMinKmh    = 15.0
	trunkMaxKmh    = 60.0
)

// Profile summarises the recent trajectory fed to the classifier
type Profile struct {
	Classes     map[RoadClass]int
	MeanKmh     float64
	StdKmh      float64
	SnappedSize int
}

// Classify derives a mode from road classes and the speed profile. last is
// the previously emitted mode (UNKNOWN for none); the speed buckets only
// switch away from it once the speed clears the boundary by 5 km/h.
func Classify(p Profile, last models.TransportMode) models.ModePrediction {
	switch {
	case p.Classes[RoadMotorway] > 0 && p.MeanKmh > motorwayMinKmh:
		return prediction(models.ModeDriving, 0.95)
	case p.Classes[RoadTrunk] > 0 && p.MeanKmh >= trunkMinKmh && p.MeanKmh <= trunkMaxKmh:
		return prediction(models.ModeBus, 0.85)
	case p.Classes[RoadCycleway] > 0:
		return prediction(models.ModeCycling, 0.9)
	case p.Classes[RoadRail] > 0 && p.MeanKmh >= railMinKmh && p.MeanKmh <= railMaxKmh && p.StdKmh < railMaxStdKmh:
		return prediction(models.ModeSubway, 0.85)
	}
	return classifyBySpeedWithHysteresis(p.MeanKmh, last)
}

func classifyBySpeedWithHysteresis(kmh float64, last models.TransportMode) models.ModePrediction {
	switch last {
	case models.ModeWalking:
		if kmh > walkCycleKmh+hysteresisKmh {
			return classifyBySpeed(kmh)
		}
		return prediction(models.ModeWalking, 0.85)
	case models.ModeCycling:
		switch {
		case kmh < walkCycleKmh-hysteresisKmh:
			return prediction(models.ModeWalking, 0.85)
		case kmh > cycleBusKmh+hysteresisKmh:
			return classifyBySpeed(kmh)
		}
		return prediction(models.ModeCycling, 0.80)
	case models.ModeBus:
		switch {
		case kmh < cycleBusKmh-hysteresisKmh:
			return classifyBySpeed(kmh)
		case kmh > busDriveKmh+hysteresisKmh:
			return prediction(models.ModeDriving, 0.90)
		}
		return prediction(models.ModeBus, 0.75)
	case models.ModeDriving:
		if kmh < busDriveKmh-hysteresisKmh {
			return classifyBySpeed(kmh)
		}
		return prediction(models.ModeDriving, 0.90)
	}
	return classifyBySpeed(kmh)
}

func classifyBySpeed(kmh float64) models.ModePrediction {
	switch {
	case kmh < walkCycleKmh:
		return prediction(models.ModeWalking, 0.85)
	case kmh < cycleBusKmh:
		return prediction(models.ModeCycling, 0.80)
	case kmh < busDriveKmh:
		return prediction(models.ModeBus, 0.75)
	default:
		return prediction(models.ModeDriving, 0.90)
	}
}

func prediction(mode models.TransportMode, confidence float64) models.ModePrediction {
	return models.NewPrediction(mode, confidence, models.SourceRoadMatch)
}
