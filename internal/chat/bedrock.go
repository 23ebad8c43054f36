package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient implements Chatter using the Bedrock Converse API. It is the
// alternate reasoning backend, selected with LLM_PROVIDER=bedrock.
type BedrockClient struct {
	api          bedrockConverseAPI
	modelID      string
	instructions InstructionsFunc
	temperature  float32
}

// NewBedrockClient creates a Bedrock-backed reasoning client.
func NewBedrockClient(api bedrockConverseAPI, modelID string, instructions InstructionsFunc, temperature float32) (*BedrockClient, error) {
	if api == nil {
		return nil, errors.New("chat: bedrock runtime client is required")
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("chat: bedrock model id is required")
	}
	return &BedrockClient{
		api:          api,
		modelID:      modelID,
		instructions: instructions,
		temperature:  temperature,
	}, nil
}

// Send converses with the configured model over the given history.
func (c *BedrockClient) Send(ctx context.Context, history []Message, utterance string) (string, error) {
	var systemBlocks []brtypes.SystemContentBlock
	if c.instructions != nil {
		if text := strings.TrimSpace(c.instructions()); text != "" {
			systemBlocks = append(systemBlocks, &brtypes.SystemContentBlockMemberText{Value: text})
		}
	}

	messages := make([]brtypes.Message, 0, len(history)+1)
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		role := brtypes.ConversationRoleUser
		if msg.Role == RoleModel {
			role = brtypes.ConversationRoleAssistant
		}
		messages = append(messages, brtypes.Message{
			Role: role,
			Content: []brtypes.ContentBlock{
				&brtypes.ContentBlockMemberText{Value: text},
			},
		})
	}
	messages = append(messages, brtypes.Message{
		Role: brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: utterance},
		},
	})

	inference := &brtypes.InferenceConfiguration{}
	if c.temperature >= 0 {
		inference.Temperature = aws.Float32(c.temperature)
	}

	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(c.modelID),
		System:          systemBlocks,
		Messages:        messages,
		InferenceConfig: inference,
	})
	if err != nil {
		return "", fmt.Errorf("chat: bedrock completion failed: %w", err)
	}

	text, err := bedrockOutputText(out)
	if err != nil {
		return "", err
	}
	return text, nil
}

func bedrockOutputText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", ErrNoResponse
	}
	msgOut, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(msgOut.Value.Content) == 0 {
		return "", ErrNoResponse
	}

	var builder strings.Builder
	for _, block := range msgOut.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			builder.WriteString(textBlock.Value)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", ErrNoResponse
	}
	return builder.String(), nil
}
