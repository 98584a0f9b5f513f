package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresRegion(t *testing.T) {
	_, err := LoadConfig(context.Background(), "")
	assert.Error(t, err)
}

func TestTextEmail(t *testing.T) {
	in := TextEmail("from@example.com", "to@example.com", "Portfolio ready", "https://example.com/a")
	require.NotNil(t, in.Destination)
	assert.Equal(t, "from@example.com", *in.Source)
	assert.Equal(t, []string{"to@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Portfolio ready", *in.Message.Subject.Data)
	assert.Equal(t, "https://example.com/a", *in.Message.Body.Text.Data)
	assert.Nil(t, in.Message.Body.Html)
}

func TestTopicMessage(t *testing.T) {
	in := TopicMessage("arn:aws:sns:us-east-1:1:topic", "Portfolio ready", "body", map[string]string{"outcome": "succeeded"})
	assert.Equal(t, "arn:aws:sns:us-east-1:1:topic", *in.TopicArn)
	assert.Equal(t, "body", *in.Message)
	require.Contains(t, in.MessageAttributes, "outcome")
	assert.Equal(t, "succeeded", *in.MessageAttributes["outcome"].StringValue)

	bare := TopicMessage("arn", "s", "m", nil)
	assert.Nil(t, bare.MessageAttributes)
}
