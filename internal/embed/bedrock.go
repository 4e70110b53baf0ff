package embed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
)

// BedrockEmbedder calls an AWS Bedrock Titan embedding model through the
// SDK's InvokeModel with JSON request/response framing.
type BedrockEmbedder struct {
	client    *bedrockruntime.Client
	model     string
	dimension int
	logger    *zap.Logger
}

// NewBedrockEmbedder loads the AWS SDK v2 config for region and constructs
// a Bedrock runtime client. If accessKeyID/secretAccessKey are non-empty,
// they override
// the default credential chain (IAM role, shared config, env) with a static
// provider — useful for local/dev runs outside an AWS execution environment.
func NewBedrockEmbedder(ctx context.Context, region, model, accessKeyID, secretAccessKey string, dimension int, logger *zap.Logger) (*BedrockEmbedder, error) {
	if region == "" {
		region = "us-east-1"
	}
	if model == "" {
		model = "amazon.titan-embed-text-v2:0"
	}
	if dimension <= 0 {
		dimension = 1024
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("embed.NewBedrockEmbedder: load AWS config: %w", err)
	}

	return &BedrockEmbedder{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		model:     model,
		dimension: dimension,
		logger:    logger,
	}, nil
}

func (e *BedrockEmbedder) Dimension() int { return e.dimension }

type titanEmbedRequest struct {
	InputText string `json:"inputText"`
	Dimension int    `json:"dimensions,omitempty"`
}

type titanEmbedResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(titanEmbedRequest{InputText: text, Dimension: e.dimension})
	if err != nil {
		return nil, fmt.Errorf("embed.BedrockEmbedder.Embed: marshal request: %w", err)
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.model),
		Body:        reqBody,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("embed.BedrockEmbedder.Embed: invoke model: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("embed.BedrockEmbedder.Embed: decode response: %w", err)
	}
	return resp.Embedding, nil
}
