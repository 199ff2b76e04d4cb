// internal/services/storage_service_test.go
package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/services/servicestest"
	"github.com/javajoker/story-mcp/internal/utils"
)

type fakeS3 struct {
	s3iface.S3API
	keys   []string
	bodies [][]byte
	fail   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	body, _ := io.ReadAll(in.Body)
	f.keys = append(f.keys, aws.StringValue(in.Key))
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func newStorage(t *testing.T) (*services.StorageService, *servicestest.Pinner, *servicestest.Recorder) {
	t.Helper()
	pinner := servicestest.NewPinner()
	rec := &servicestest.Recorder{}
	svc, err := services.NewStorageService(servicestest.Config(), pinner, rec)
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	return svc, pinner, rec
}

func TestUploadIPMetadataPinsBothDocuments(t *testing.T) {
	svc, pinner, rec := newStorage(t)

	res, err := svc.UploadIPMetadata(context.Background(), &services.IPMetadataRequest{
		Title:       "Midnight Tape #4",
		Description: "Lo-fi loop",
		ImageURL:    "https://example.com/cover.png",
		Creators: []services.Creator{
			{Name: "Ana", Address: servicestest.Signer.Hex(), ContributionPercent: 60},
			{Name: "Bo", Address: servicestest.Bob.Hex(), ContributionPercent: 40},
		},
		Attributes: []services.NFTAttribute{{TraitType: "bpm", Value: 82}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"midnight-tape-4-ip-metadata", "midnight-tape-4-nft-metadata"}, pinner.Names)
	assert.Equal(t, "ipfs://bafya", res.IPMetadataURI)
	assert.Equal(t, "ipfs://bafyb", res.NFTMetadataURI)
	assert.Equal(t, "https://gateway.test/ipfs/bafya", res.IPMetadata.GatewayURL)

	var ipa map[string]interface{}
	require.NoError(t, json.Unmarshal(pinner.Pinned["midnight-tape-4-ip-metadata"], &ipa))
	assert.Equal(t, "Midnight Tape #4", ipa["title"])
	assert.Equal(t, "2025-03-01T12:00:00Z", ipa["createdAt"])
	assert.Len(t, ipa["creators"], 2)

	var nft map[string]interface{}
	require.NoError(t, json.Unmarshal(pinner.Pinned["midnight-tape-4-nft-metadata"], &nft))
	assert.Equal(t, "Midnight Tape #4", nft["name"])
	assert.Equal(t, "https://example.com/cover.png", nft["image"])

	digest := utils.HashString(string(pinner.Pinned["midnight-tape-4-ip-metadata"]))
	assert.Equal(t, "0x"+digest, res.IPMetadataHash)

	require.Len(t, rec.Pins, 2)
	assert.Equal(t, "ip_metadata", rec.Pins[0].Kind)
	assert.Equal(t, digest, rec.Pins[0].SHA256)
}

func TestUploadIPMetadataChecksContributions(t *testing.T) {
	svc, pinner, _ := newStorage(t)

	_, err := svc.UploadIPMetadata(context.Background(), &services.IPMetadataRequest{
		Title: "Split",
		Creators: []services.Creator{
			{Name: "Ana", Address: servicestest.Signer.Hex(), ContributionPercent: 60},
		},
	})
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "creators", verr.Field)
	assert.Empty(t, pinner.Names)
}

func TestUploadJSONCompactsContent(t *testing.T) {
	svc, pinner, _ := newStorage(t)

	doc, err := svc.UploadJSON(context.Background(), &services.UploadJSONRequest{
		Name:    "notes",
		Content: json.RawMessage("{\n  \"a\": 1\n}"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(pinner.Pinned["notes"]))
	assert.Equal(t, "ipfs://bafya", doc.URI)
	assert.Empty(t, doc.MirrorURL)
}

func TestUploadJSONRejectsInvalidJSON(t *testing.T) {
	svc, _, _ := newStorage(t)

	_, err := svc.UploadJSON(context.Background(), &services.UploadJSONRequest{
		Name:    "bad",
		Content: json.RawMessage("{nope"),
	})
	var verr *pil.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "content", verr.Field)
}

func TestUploadWithoutPinataFails(t *testing.T) {
	svc, err := services.NewStorageService(servicestest.Config(), ipfs.NewClient(servicestest.Config().IPFS), nil)
	require.NoError(t, err)

	_, err = svc.UploadJSON(context.Background(), &services.UploadJSONRequest{Name: "x", Content: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, ipfs.ErrNotConfigured)
}

func TestPinMirrorsToS3(t *testing.T) {
	cfg := servicestest.Config()
	cfg.AWS.S3Bucket = "story-metadata"
	cfg.AWS.Region = "us-east-1"
	cfg.AWS.CloudFrontURL = "https://cdn.example.com/"
	pinner := servicestest.NewPinner()
	rec := &servicestest.Recorder{}
	svc, err := services.NewStorageService(cfg, pinner, rec)
	require.NoError(t, err)
	mirror := &fakeS3{}
	svc.SetS3Client(mirror)

	doc, err := svc.UploadJSON(context.Background(), &services.UploadJSONRequest{Name: "x", Content: json.RawMessage(`{"k":"v"}`)})
	require.NoError(t, err)

	assert.Equal(t, []string{"metadata/bafya.json"}, mirror.keys)
	assert.Equal(t, `{"k":"v"}`, string(mirror.bodies[0]))
	assert.Equal(t, "https://cdn.example.com/metadata/bafya.json", doc.MirrorURL)
	assert.Equal(t, "metadata/bafya.json", rec.Pins[0].MirrorKey)
}

func TestMirrorFailureDoesNotFailPin(t *testing.T) {
	pinner := servicestest.NewPinner()
	rec := &servicestest.Recorder{}
	svc, err := services.NewStorageService(servicestest.Config(), pinner, rec)
	require.NoError(t, err)
	svc.SetS3Client(&fakeS3{fail: errors.New("access denied")})

	doc, err := svc.UploadJSON(context.Background(), &services.UploadJSONRequest{Name: "x", Content: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Empty(t, doc.MirrorURL)
	assert.Empty(t, rec.Pins[0].MirrorKey)
}

func TestUploadFileHashesContent(t *testing.T) {
	svc, pinner, rec := newStorage(t)

	doc, err := svc.UploadFile(context.Background(), "cover.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "ipfs://"+doc.CID, doc.URI)
	assert.Equal(t, "0x"+utils.HashString("png-bytes"), doc.SHA256)
	assert.Equal(t, "png-bytes", string(pinner.Pinned["cover.png"]))
	require.Len(t, rec.Pins, 1)
	assert.Equal(t, "file", rec.Pins[0].Kind)

	_, err = svc.UploadFile(context.Background(), " ", strings.NewReader("x"))
	var verr *pil.ValidationError
	assert.True(t, errors.As(err, &verr))
}
