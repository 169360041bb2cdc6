package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// AnalysisEvent is the message published when an analysis completes.
type AnalysisEvent struct {
	AnalysisID        string    `json:"analysis_id"`
	UserID            string    `json:"user_id"`
	StressScore       int       `json:"stress_score"`
	FatigueScore      int       `json:"fatigue_score"`
	FinalStressScore  int       `json:"final_stress_score"`
	FinalFatigueScore int       `json:"final_fatigue_score"`
	StressLevel       string    `json:"stress_level"`
	FatigueLevel      string    `json:"fatigue_level"`
	Confidence        float64   `json:"confidence"`
	Timestamp         time.Time `json:"timestamp"`
}

// PublisherConfig holds AMQP publisher configuration
type PublisherConfig struct {
	URL       string
	QueueName string
	Durable   bool
}

// ScorePublisher handles AMQP connections and analysis event publishing.
// An unconfigured URL or queue disables publishing; Connect reports the
// condition once and callers treat the publisher as absent.
type ScorePublisher struct {
	logger    *logrus.Logger
	config    PublisherConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.RWMutex
	stopChan  chan struct{}
}

// NewScorePublisher creates a new AMQP publisher
func NewScorePublisher(logger *logrus.Logger, config PublisherConfig) *ScorePublisher {
	config.Durable = true
	return &ScorePublisher{
		logger:   logger,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Connect establishes a connection to the AMQP server
func (p *ScorePublisher) Connect() error {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.connected {
		return nil
	}

	if p.config.URL == "" || p.config.QueueName == "" {
		p.logger.Warn("AMQP_URL or AMQP_QUEUE_NAME not set, analysis events will not be published")
		return fmt.Errorf("AMQP URL or queue name not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connChan := make(chan struct {
		conn *amqp.Connection
		err  error
	}, 1)

	go func() {
		conn, err := amqp.Dial(p.config.URL)
		select {
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
		case connChan <- struct {
			conn *amqp.Connection
			err  error
		}{conn, err}:
		}
	}()

	var conn *amqp.Connection
	select {
	case <-ctx.Done():
		return fmt.Errorf("AMQP connection timed out after 5s")
	case result := <-connChan:
		if result.err != nil {
			return fmt.Errorf("failed to connect to AMQP server: %w", result.err)
		}
		conn = result.conn
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		p.config.QueueName,
		p.config.Durable,
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	p.conn = conn
	p.channel = channel
	p.connected = true

	go p.monitorConnection()

	p.logger.WithField("queue", p.config.QueueName).Info("Connected to AMQP server")
	return nil
}

// monitorConnection reconnects with backoff when the connection drops
func (p *ScorePublisher) monitorConnection() {
	closeChan := make(chan *amqp.Error)
	p.connMutex.RLock()
	if p.conn != nil {
		p.conn.NotifyClose(closeChan)
	}
	p.connMutex.RUnlock()

	select {
	case <-p.stopChan:
		return
	case amqpErr := <-closeChan:
		if amqpErr != nil {
			p.logger.WithError(amqpErr).Warn("AMQP connection lost, attempting to reconnect")
		}

		p.connMutex.Lock()
		p.connected = false
		p.conn = nil
		p.channel = nil
		p.connMutex.Unlock()

		backoff := time.Second
		for {
			select {
			case <-p.stopChan:
				return
			case <-time.After(backoff):
			}

			if err := p.Connect(); err == nil {
				return
			}

			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}
}

// PublishAnalysis publishes one analysis event as JSON
func (p *ScorePublisher) PublishAnalysis(event AnalysisEvent) error {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()

	if !p.connected || p.channel == nil {
		return fmt.Errorf("AMQP client not connected")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	err = p.channel.Publish(
		"", // default exchange
		p.config.QueueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish analysis event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"analysis_id": event.AnalysisID,
		"user_id":     event.UserID,
	}).Debug("Published analysis event")

	return nil
}

// IsConnected reports whether the publisher currently holds a live connection
func (p *ScorePublisher) IsConnected() bool {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()
	return p.connected
}

// Disconnect closes the connection and stops the reconnect monitor
func (p *ScorePublisher) Disconnect() {
	close(p.stopChan)

	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.connected = false
}
