package ingest

import (
	"context"
	"math/rand"
	"time"

	"github.com/kavete/health-monitor/internal/logger"
)

// Simulator feeds the consumer synthetic sensor values at a fixed
// cadence, standing in for the MQTT broker during local development.
// Values drift randomly around realistic ward and patient baselines.
type Simulator struct {
	consumer *Consumer
	interval time.Duration
	log      *logger.Logger
	rng      *rand.Rand
}

// NewSimulator creates a simulator emitting one full topic sweep per
// interval.
func NewSimulator(consumer *Consumer, interval time.Duration, log *logger.Logger) *Simulator {
	return &Simulator{
		consumer: consumer,
		interval: interval,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits readings until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	s.log.Info("sensor simulator started", map[string]interface{}{"interval": s.interval.String()})

	temp := 23.0
	humidity := 55.0
	noise := 40.0
	light := 300.0
	heartRate := 72.0
	spo2 := 97.5

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sensor simulator stopped")
			return
		case <-ticker.C:
			temp = drift(s.rng, temp, 0.3, 18, 30)
			humidity = drift(s.rng, humidity, 1.5, 30, 90)
			noise = drift(s.rng, noise, 2.0, 25, 80)
			light = drift(s.rng, light, 15, 50, 800)
			heartRate = drift(s.rng, heartRate, 2.0, 55, 110)
			spo2 = drift(s.rng, spo2, 0.4, 90, 100)

			s.consumer.Ingest(TopicTempDHT, round1(temp))
			s.consumer.Ingest(TopicHumidity, round1(humidity))
			s.consumer.Ingest(TopicSound, round1(noise))
			s.consumer.Ingest(TopicLight, round1(light))
			s.consumer.Ingest(TopicHeartRate, float64(int(heartRate)))
			s.consumer.Ingest(TopicSpO2, round1(spo2))
		}
	}
}

// drift nudges v by a random step, clamped into [min, max].
func drift(rng *rand.Rand, v, step, min, max float64) float64 {
	v += (rng.Float64()*2 - 1) * step
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
