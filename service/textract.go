package service

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/julilatch/rs-api/config"
	"github.com/julilatch/rs-api/model"
)

// TextractAPI is the slice of the Textract client the service uses.
type TextractAPI interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// TextractService recognizes tables on page images via AWS Textract.
// The underlying client pools connections and is safe for the concurrent
// calls the pipeline issues.
type TextractService struct {
	client TextractAPI
}

func NewTextractService(ctx context.Context, cfg *config.TextractConfig) (*TextractService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &TextractService{client: textract.NewFromConfig(awsCfg)}, nil
}

// Extract submits one page image for table analysis and returns every
// table recognized on it, in the order Textract reports them.
func (s *TextractService) Extract(ctx context.Context, image []byte) ([]model.Table, error) {
	out, err := s.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document:     &types.Document{Bytes: image},
		FeatureTypes: []types.FeatureType{types.FeatureTypeTables},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	return TablesFromBlocks(out.Blocks), nil
}
