// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/metrics"
	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/utils"
)

// Pinner pins content to IPFS. *ipfs.Client implements it.
type Pinner interface {
	Configured() bool
	PinJSON(ctx context.Context, name string, content json.RawMessage) (*ipfs.PinResult, error)
	PinFile(ctx context.Context, name string, data io.Reader) (*ipfs.PinResult, error)
	GatewayURL(cid string) string
}

// PinRecorder persists pins for later lookup. It may be nil.
type PinRecorder interface {
	RecordPin(ctx context.Context, pin *models.MetadataPin)
}

type StorageService struct {
	pinner   Pinner
	s3Client s3iface.S3API
	config   *config.Config
	pins     PinRecorder
	now      func() time.Time
}

type Creator struct {
	Name                string `json:"name" validate:"required,max=100"`
	Address             string `json:"address" validate:"required,eth_address"`
	ContributionPercent int    `json:"contribution_percent" validate:"min=0,max=100"`
}

type NFTAttribute struct {
	TraitType string      `json:"trait_type" validate:"required"`
	Value     interface{} `json:"value"`
}

type IPMetadataRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	ImageURL    string         `json:"image_url,omitempty" validate:"omitempty,url"`
	ImageHash   string         `json:"image_hash,omitempty"`
	MediaURL    string         `json:"media_url,omitempty" validate:"omitempty,url"`
	MediaHash   string         `json:"media_hash,omitempty"`
	MediaType   string         `json:"media_type,omitempty"`
	IPType      string         `json:"ip_type,omitempty"`
	Creators    []Creator      `json:"creators,omitempty" validate:"dive"`
	Tags        []string       `json:"tags,omitempty"`
	Attributes  []NFTAttribute `json:"attributes,omitempty" validate:"dive"`
}

// ipaMetadata follows the Story IP asset metadata standard.
type ipaMetadata struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	Creators    []ipaCreator `json:"creators,omitempty"`
	Image       string       `json:"image,omitempty"`
	ImageHash   string       `json:"imageHash,omitempty"`
	MediaURL    string       `json:"mediaUrl,omitempty"`
	MediaHash   string       `json:"mediaHash,omitempty"`
	MediaType   string       `json:"mediaType,omitempty"`
	IPType      string       `json:"ipType,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

type ipaCreator struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	ContributionPercent int    `json:"contributionPercent"`
}

// nftMetadata follows the ERC-721 metadata JSON schema.
type nftMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Attributes  []NFTAttribute `json:"attributes,omitempty"`
}

type PinnedDocument struct {
	CID        string `json:"cid"`
	URI        string `json:"uri"`
	GatewayURL string `json:"gateway_url"`
	SHA256     string `json:"sha256"`
	Size       int64  `json:"size"`
	MirrorURL  string `json:"mirror_url,omitempty"`
}

type MetadataUploadResult struct {
	IPMetadataURI   string         `json:"ip_metadata_uri"`
	IPMetadataHash  string         `json:"ip_metadata_hash"`
	NFTMetadataURI  string         `json:"nft_metadata_uri"`
	NFTMetadataHash string         `json:"nft_metadata_hash"`
	IPMetadata      PinnedDocument `json:"ip_metadata"`
	NFTMetadata     PinnedDocument `json:"nft_metadata"`
}

type UploadJSONRequest struct {
	Name    string          `json:"name" validate:"required,max=255"`
	Content json.RawMessage `json:"content" validate:"required"`
}

func NewStorageService(config *config.Config, pinner Pinner, pins PinRecorder) (*StorageService, error) {
	svc := &StorageService{
		pinner: pinner,
		config: config,
		pins:   pins,
		now:    time.Now,
	}

	if config.AWS.AccessKeyID == "" || config.AWS.S3Bucket == "" {
		// No mirror; IPFS only
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc.s3Client = s3.New(sess)
	return svc, nil
}

// SetS3Client replaces the mirror client.
func (s *StorageService) SetS3Client(client s3iface.S3API) {
	s.s3Client = client
}

func (s *StorageService) SetClock(now func() time.Time) {
	s.now = now
}

// UploadIPMetadata builds the IP asset and NFT metadata documents, pins both
// and returns the URIs and sha256 digests registration needs.
func (s *StorageService) UploadIPMetadata(ctx context.Context, req *IPMetadataRequest) (*MetadataUploadResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	ipa := ipaMetadata{
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
		Image:       req.ImageURL,
		ImageHash:   req.ImageHash,
		MediaURL:    req.MediaURL,
		MediaHash:   req.MediaHash,
		MediaType:   req.MediaType,
		IPType:      req.IPType,
		Tags:        req.Tags,
	}
	for _, c := range req.Creators {
		ipa.Creators = append(ipa.Creators, ipaCreator{
			Name:                c.Name,
			Address:             c.Address,
			ContributionPercent: c.ContributionPercent,
		})
	}
	if err := checkContributions(req.Creators); err != nil {
		return nil, err
	}

	nft := nftMetadata{
		Name:        req.Title,
		Description: req.Description,
		Image:       req.ImageURL,
		Attributes:  req.Attributes,
	}

	ipDoc, err := s.pinDocument(ctx, slug(req.Title)+"-ip-metadata", "ip_metadata", ipa)
	if err != nil {
		return nil, err
	}
	nftDoc, err := s.pinDocument(ctx, slug(req.Title)+"-nft-metadata", "nft_metadata", nft)
	if err != nil {
		return nil, err
	}

	return &MetadataUploadResult{
		IPMetadataURI:   ipDoc.URI,
		IPMetadataHash:  ipDoc.SHA256,
		NFTMetadataURI:  nftDoc.URI,
		NFTMetadataHash: nftDoc.SHA256,
		IPMetadata:      *ipDoc,
		NFTMetadata:     *nftDoc,
	}, nil
}

// UploadJSON pins an arbitrary JSON document.
func (s *StorageService) UploadJSON(ctx context.Context, req *UploadJSONRequest) (*PinnedDocument, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !json.Valid(req.Content) {
		return nil, invalidField("content", "must be valid JSON")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, req.Content); err != nil {
		return nil, invalidField("content", "must be valid JSON")
	}
	return s.pin(ctx, req.Name, "json", compact.Bytes())
}

// UploadFile pins a media file such as a cover image. The returned SHA256
// is the digest metadata documents reference as imageHash or mediaHash.
func (s *StorageService) UploadFile(ctx context.Context, name string, data io.Reader) (*PinnedDocument, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidField("name", "must not be empty")
	}
	if s.pinner == nil || !s.pinner.Configured() {
		return nil, ipfs.ErrNotConfigured
	}

	hasher := sha256.New()
	res, err := s.pinner.PinFile(ctx, name, io.TeeReader(data, hasher))
	metrics.ObservePin("file", err)
	if err != nil {
		return nil, err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))

	if s.pins != nil {
		s.pins.RecordPin(ctx, &models.MetadataPin{
			CID:    res.CID,
			Name:   name,
			Kind:   "file",
			SHA256: digest,
			Size:   res.Size,
		})
	}

	logrus.WithFields(logrus.Fields{
		"cid":  res.CID,
		"name": name,
		"size": res.Size,
	}).Info("Pinned file to IPFS")

	return &PinnedDocument{
		CID:        res.CID,
		URI:        "ipfs://" + res.CID,
		GatewayURL: s.pinner.GatewayURL(res.CID),
		SHA256:     "0x" + digest,
		Size:       res.Size,
	}, nil
}

func (s *StorageService) pinDocument(ctx context.Context, name, kind string, doc interface{}) (*PinnedDocument, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return s.pin(ctx, name, kind, data)
}

func (s *StorageService) pin(ctx context.Context, name, kind string, data []byte) (*PinnedDocument, error) {
	if s.pinner == nil || !s.pinner.Configured() {
		return nil, ipfs.ErrNotConfigured
	}

	res, err := s.pinner.PinJSON(ctx, name, json.RawMessage(data))
	metrics.ObservePin(kind, err)
	if err != nil {
		return nil, err
	}

	doc := &PinnedDocument{
		CID:        res.CID,
		URI:        "ipfs://" + res.CID,
		GatewayURL: s.pinner.GatewayURL(res.CID),
		SHA256:     "0x" + hex.EncodeToString(utils.HashBytes(data)),
		Size:       res.Size,
	}

	var mirrorKey string
	if s.s3Client != nil {
		key := fmt.Sprintf("metadata/%s.json", res.CID)
		if err := s.mirror(ctx, key, data); err != nil {
			logrus.WithError(err).WithField("cid", res.CID).Warn("Failed to mirror metadata to S3")
		} else {
			mirrorKey = key
			doc.MirrorURL = s.getS3URL(key)
		}
	}

	if s.pins != nil {
		s.pins.RecordPin(ctx, &models.MetadataPin{
			CID:       res.CID,
			Name:      name,
			Kind:      kind,
			SHA256:    strings.TrimPrefix(doc.SHA256, "0x"),
			Size:      int64(len(data)),
			MirrorKey: mirrorKey,
		})
	}

	logrus.WithFields(logrus.Fields{
		"cid":  res.CID,
		"kind": kind,
		"size": len(data),
	}).Info("Pinned document to IPFS")

	return doc, nil
}

func (s *StorageService) mirror(ctx context.Context, key string, data []byte) error {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func checkContributions(creators []Creator) error {
	if len(creators) == 0 {
		return nil
	}
	total := 0
	for _, c := range creators {
		total += c.ContributionPercent
	}
	if total != 100 {
		return invalidField("creators", "contribution percentages must add up to 100, got %d", total)
	}
	return nil
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	if len(out) > 60 {
		out = strings.TrimSuffix(out[:60], "-")
	}
	return out
}
