package attention

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/config"
	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/records"
	"beacon/pkg/models"
)

type capturingProducer struct {
	topic    string
	envelope models.MessageEnvelope
	calls    int
	err      error
}

func (p *capturingProducer) Publish(_ context.Context, topic string, msg models.MessageEnvelope) error {
	p.calls++
	p.topic = topic
	p.envelope = msg
	return p.err
}

func (p *capturingProducer) Close() error { return nil }
func (p *capturingProducer) SetServiceName(string) {}

func TestDigesterPublish(t *testing.T) {
	repo := &fakeRecordsRepo{
		applicants: []*records.Applicant{
			stuckApplicant("ap-1", "Amy", 10),
			stuckApplicant("ap-2", "Zoe", 10),
		},
	}
	rules := staticRules{
		stuckRule("r-critical", engine.KindApplicant, engine.UrgencyCritical, 5),
		stuckRule("r-info", engine.KindApplicant, engine.UrgencyInfo, 5),
	}
	svc := NewService(rules, repo, nil, nil, logger.NopLogger())
	producer := &capturingProducer{}
	digester := NewDigester(svc, producer, config.DigestConfig{Topic: "attention.digest", MaxItems: 3}, logger.NopLogger())

	require.NoError(t, digester.Publish(context.Background()))
	require.Equal(t, 1, producer.calls)
	assert.Equal(t, "attention.digest", producer.topic)
	assert.Equal(t, "attention-service", producer.envelope.Source)
	assert.NotEmpty(t, producer.envelope.ID)

	payload := producer.envelope.Payload
	assert.Equal(t, 4, payload["total"])
	assert.Equal(t, 2, payload["critical"])
	assert.Equal(t, 0, payload["warning"])
	assert.Equal(t, 2, payload["info"])

	items, ok := payload["items"].([]engine.ActionItem)
	require.True(t, ok)
	assert.Len(t, items, 3)
	assert.Equal(t, engine.UrgencyCritical, items[0].Urgency)
}

func TestDigesterPublish_ProducerFailure(t *testing.T) {
	repo := &fakeRecordsRepo{applicants: []*records.Applicant{stuckApplicant("ap-1", "Amy", 10)}}
	rules := staticRules{stuckRule("r1", engine.KindApplicant, engine.UrgencyWarning, 5)}
	svc := NewService(rules, repo, nil, nil, logger.NopLogger())
	producer := &capturingProducer{err: errors.New("broker unavailable")}
	digester := NewDigester(svc, producer, config.DigestConfig{Topic: "attention.digest"}, logger.NopLogger())

	assert.Error(t, digester.Publish(context.Background()))
}
