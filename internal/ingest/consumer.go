package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kavete/health-monitor/internal/logger"
	"github.com/kavete/health-monitor/internal/models"
)

// MQTT topics published by the ward's Pico firmware.
const (
	TopicTempDHT   = "ward/temperature_dht"
	TopicTempLM35  = "ward/temperature_lm35"
	TopicHumidity  = "ward/humidity"
	TopicSound     = "ward/sound"
	TopicLight     = "ward/light"
	TopicSpO2      = "ward/spo2"
	TopicHeartRate = "ward/heart_rate"
)

// defaultBodyTemp stands in for patient temperature when no ward
// temperature is cached at commit time.
const defaultBodyTemp = 36.5

// Sink receives committed readings, typically the in-memory store.
type Sink interface {
	AddWardReading(r models.WardReading)
	AddPatientVitals(v models.PatientVitals)
}

// Config identifies the broker and the ward/patient the sensor feed
// belongs to. A single feed maps to one ward and one monitored patient,
// matching the single-Pico deployment.
type Config struct {
	BrokerURL string
	ClientID  string
	WardSlug  string
	PatientID int
}

// sensorCache accumulates partial sensor values until a complete row
// can be committed.
type sensorCache struct {
	wardTempDHT  *float64
	wardTempLM35 *float64
	wardHumidity *float64
	wardSound    *float64
	wardLight    *float64

	patientSpO2      *float64
	patientHeartRate *float64
}

// Consumer subscribes to the sensor topics and turns the partial
// per-topic values into complete ward readings and patient vitals. A
// ward row commits once temperature and humidity are both cached (DHT
// temperature primary, LM35 fallback); a vitals row commits once heart
// rate and SpO2 are both cached. The cache resets after each commit so
// every row is built from fresh samples.
type Consumer struct {
	cfg    Config
	sink   Sink
	backup *CSVBackup
	log    *logger.Logger
	client mqtt.Client
	cache  sensorCache
	now    func() time.Time
}

// NewConsumer creates a consumer. backup may be nil to disable CSV
// logging.
func NewConsumer(cfg Config, sink Sink, backup *CSVBackup, log *logger.Logger) *Consumer {
	return &Consumer{
		cfg:    cfg,
		sink:   sink,
		backup: backup,
		log:    log,
		now:    time.Now,
	}
}

// Start connects to the broker and subscribes to all sensor topics.
func (c *Consumer) Start() error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.log.Warn("mqtt connection lost", map[string]interface{}{"error": err.Error()})
		})

	c.client = mqtt.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to mqtt broker %s: %w", c.cfg.BrokerURL, token.Error())
	}
	return nil
}

// Stop disconnects from the broker.
func (c *Consumer) Stop() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}

func (c *Consumer) onConnect(client mqtt.Client) {
	c.log.Info("connected to mqtt broker", map[string]interface{}{"broker": c.cfg.BrokerURL})

	topics := []string{
		TopicTempDHT, TopicTempLM35, TopicHumidity,
		TopicSound, TopicLight, TopicSpO2, TopicHeartRate,
	}
	for _, topic := range topics {
		if token := client.Subscribe(topic, 0, c.handleMessage); token.Wait() && token.Error() != nil {
			c.log.Error("subscribe failed", token.Error(), map[string]interface{}{"topic": topic})
			continue
		}
		c.log.Debug("subscribed", map[string]interface{}{"topic": topic})
	}
}

func (c *Consumer) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	raw := strings.TrimSpace(string(msg.Payload()))
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.log.Warn("invalid sensor payload", map[string]interface{}{
			"topic":   msg.Topic(),
			"payload": raw,
		})
		return
	}
	if c.backup != nil {
		c.backup.LogRaw(c.now(), msg.Topic(), value)
	}
	c.Ingest(msg.Topic(), value)
}

// Ingest records one sensor value and commits any row the cache can now
// complete. Exposed for feeding the consumer without a broker.
func (c *Consumer) Ingest(topic string, value float64) {
	v := value
	switch topic {
	case TopicTempDHT:
		c.cache.wardTempDHT = &v
	case TopicTempLM35:
		c.cache.wardTempLM35 = &v
	case TopicHumidity:
		c.cache.wardHumidity = &v
	case TopicSound:
		c.cache.wardSound = &v
	case TopicLight:
		c.cache.wardLight = &v
	case TopicSpO2:
		c.cache.patientSpO2 = &v
	case TopicHeartRate:
		c.cache.patientHeartRate = &v
	default:
		c.log.Debug("ignoring unknown topic", map[string]interface{}{"topic": topic})
		return
	}

	c.commitPatientVitals()
	c.commitWardReading()
}

// commitWardReading saves a ward row once temperature and humidity are
// present. DHT temperature is primary with LM35 as fallback; missing
// sound defaults to zero and missing light stays absent.
func (c *Consumer) commitWardReading() {
	temp := c.cache.wardTempDHT
	if temp == nil {
		temp = c.cache.wardTempLM35
	}
	if temp == nil || c.cache.wardHumidity == nil {
		return
	}

	reading := models.WardReading{
		WardSlug:       c.cfg.WardSlug,
		Temperature:    *temp,
		Humidity:       *c.cache.wardHumidity,
		LightIntensity: c.cache.wardLight,
		Timestamp:      c.now(),
	}
	if c.cache.wardSound != nil {
		reading.NoiseLevel = *c.cache.wardSound
	}

	c.sink.AddWardReading(reading)
	if c.backup != nil {
		c.backup.LogWard(reading)
	}
	c.log.Info("ward reading committed", map[string]interface{}{
		"ward":        c.cfg.WardSlug,
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
	})

	c.cache.wardTempDHT = nil
	c.cache.wardTempLM35 = nil
	c.cache.wardHumidity = nil
	c.cache.wardSound = nil
	c.cache.wardLight = nil
}

// commitPatientVitals saves a vitals row once heart rate and SpO2 are
// present, borrowing the cached ward temperature as the patient
// temperature when available. Runs before the ward commit so the
// temperature cache is still warm.
func (c *Consumer) commitPatientVitals() {
	if c.cache.patientSpO2 == nil || c.cache.patientHeartRate == nil {
		return
	}

	temp := defaultBodyTemp
	if c.cache.wardTempDHT != nil {
		temp = *c.cache.wardTempDHT
	} else if c.cache.wardTempLM35 != nil {
		temp = *c.cache.wardTempLM35
	}

	vitals := models.PatientVitals{
		PatientID:        c.cfg.PatientID,
		Temperature:      temp,
		HeartRate:        int(*c.cache.patientHeartRate),
		OxygenSaturation: *c.cache.patientSpO2,
		Timestamp:        c.now(),
	}

	c.sink.AddPatientVitals(vitals)
	if c.backup != nil {
		c.backup.LogPatient(vitals)
	}
	c.log.Info("patient vitals committed", map[string]interface{}{
		"patient":    c.cfg.PatientID,
		"heart_rate": vitals.HeartRate,
		"spo2":       vitals.OxygenSaturation,
	})

	c.cache.patientSpO2 = nil
	c.cache.patientHeartRate = nil
}
