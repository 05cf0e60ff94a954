package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"time"

	model "github.com/homeward-labs/docgate/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentService owns document uploads, requirement resolution, and the
// review lifecycle.
type DocumentService struct {
	s3Client *s3.S3
	esClient *elasticsearch.Client
	db       *gorm.DB
}

// NewDocumentService initializes the service with an S3 client and an
// optional Elasticsearch client.
func NewDocumentService(db *gorm.DB) (*DocumentService, error) {
	region := os.Getenv("SUPABASE_REGION")
	endpoint := os.Getenv("SUPABASE_S3_ENDPOINT")
	accessKey := os.Getenv("SUPABASE_ACCESS_KEY")
	secretKey := os.Getenv("SUPABASE_SECRET_KEY")

	if region == "" || endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing required S3 configuration environment variables")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(endpoint),
		DisableSSL:       aws.Bool(false),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	esURL := os.Getenv("ELASTICSEARCH_URL")
	var esClient *elasticsearch.Client
	if esURL != "" {
		esClient, err = elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{esURL},
		})
		if err != nil {
			log.Printf("Warning: Failed to create Elasticsearch client: %v", err)
		}
	}

	return &DocumentService{s3Client: s3.New(sess), esClient: esClient, db: db}, nil
}

// UploadMeta carries the request metadata for a document upload.
type UploadMeta struct {
	TenantID     string
	PhaseID      string
	DocumentType string
	UploadedBy   string
	Title        string
}

// UploadDocument stores the file in S3 and registers the document with
// status pending_review. Review records are created separately once the
// reviewing parties are known.
func (s *DocumentService) UploadDocument(file multipart.File, header *multipart.FileHeader, meta UploadMeta) (*model.Document, error) {
	if meta.DocumentType == "" {
		return nil, fmt.Errorf("%w: documentType is required", ErrValidation)
	}

	fileURL, err := s.storeFile(file, header)
	if err != nil {
		return nil, err
	}

	title := meta.Title
	if title == "" {
		title = header.Filename
	}
	doc := model.Document{
		TenantID:     meta.TenantID,
		PhaseID:      meta.PhaseID,
		DocumentType: meta.DocumentType,
		Title:        title,
		FileType:     header.Header.Get("Content-Type"),
		OriginalURL:  fileURL,
		UploadedBy:   meta.UploadedBy,
		Status:       model.DocumentStatusPendingReview,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		log.Printf("[UploadDocument] Error saving document: %v", err)
		return nil, err
	}

	if err := s.indexDocument(doc); err != nil {
		log.Printf("[UploadDocument] Elasticsearch indexing error: %v", err)
	}

	log.Printf("[UploadDocument] Document %s (%s) registered at %s", doc.ID, doc.DocumentType, fileURL)
	return &doc, nil
}

// ReuploadDocument stores a replacement file after a changes-requested (or
// rejected) outcome, links it to the superseded document, and rebuilds the
// review chain with fresh pending records.
func (s *DocumentService) ReuploadDocument(originalID string, file multipart.File, header *multipart.FileHeader) (*model.Document, error) {
	var original model.Document
	if err := s.db.First(&original, "id = ?", originalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, originalID)
		}
		return nil, err
	}

	if original.Status != model.DocumentStatusNeedsReupload && original.Status != model.DocumentStatusRejected {
		return nil, fmt.Errorf("%w: document %s has status %s and cannot be re-uploaded", ErrConflict, originalID, original.Status)
	}

	fileURL, err := s.storeFile(file, header)
	if err != nil {
		return nil, err
	}

	doc := model.Document{
		TenantID:           original.TenantID,
		PhaseID:            original.PhaseID,
		DocumentType:       original.DocumentType,
		Title:              header.Filename,
		FileType:           header.Header.Get("Content-Type"),
		OriginalURL:        fileURL,
		UploadedBy:         original.UploadedBy,
		Status:             model.DocumentStatusPendingReview,
		PreviousDocumentID: &original.ID,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		log.Printf("[ReuploadDocument] Error saving document: %v", err)
		return nil, err
	}

	if _, err := s.CreateReviewsForReupload(doc.ID, original.ID); err != nil {
		return nil, err
	}

	if err := s.indexDocument(doc); err != nil {
		log.Printf("[ReuploadDocument] Elasticsearch indexing error: %v", err)
	}

	log.Printf("[ReuploadDocument] Document %s re-uploaded as %s", original.ID, doc.ID)
	return &doc, nil
}

// storeFile uploads the raw file to the configured bucket and returns the
// public URL.
func (s *DocumentService) storeFile(file multipart.File, header *multipart.FileHeader) (string, error) {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		return "", fmt.Errorf("bucket name not configured")
	}

	key := fmt.Sprintf("%s-%s", uuid.NewString(), header.Filename)
	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(header.Header.Get("Content-Type")),
	})
	if err != nil {
		log.Printf("[storeFile] S3 upload error: %v", err)
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return fmt.Sprintf("%s/object/public/%s/%s", os.Getenv("SUPABASE_S3_URL"), bucket, key), nil
}

// indexDocument mirrors the document into Elasticsearch for dashboard
// search. Indexing is best-effort; a missing client or a failed call never
// breaks the upload.
func (s *DocumentService) indexDocument(doc model.Document) error {
	if s.esClient == nil {
		log.Println("Elasticsearch client not initialized. Skipping indexing.")
		return nil
	}

	payload := map[string]interface{}{
		"document_id":   doc.ID,
		"tenant_id":     doc.TenantID,
		"phase_id":      doc.PhaseID,
		"document_type": doc.DocumentType,
		"title":         doc.Title,
		"status":        doc.Status,
		"file_url":      doc.OriginalURL,
		"timestamp":     time.Now().UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal document for indexing: %w", err)
	}

	res, err := s.esClient.Index(
		"documents",
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(doc.ID),
		s.esClient.Index.WithContext(context.Background()),
	)
	if err != nil {
		log.Printf("Elasticsearch indexing error: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("Elasticsearch indexing failed: %s", res.String())
		return nil
	}
	return nil
}

// SearchDocuments searches indexed documents in Elasticsearch.
func (s *DocumentService) SearchDocuments(query string) ([]map[string]interface{}, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("elasticsearch client is not initialized")
	}

	searchQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title", "document_type", "status"},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(context.Background()),
		s.esClient.Search.WithIndex("documents"),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hitsMap, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits structure in search response")
	}
	hitsArray, ok := hitsMap["hits"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid hits array in search response")
	}

	var documents []map[string]interface{}
	for _, hit := range hitsArray {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		source, ok := hitMap["_source"].(map[string]interface{})
		if !ok {
			continue
		}
		documents = append(documents, source)
	}
	return documents, nil
}

// GetDocument fetches one document by ID.
func (s *DocumentService) GetDocument(documentID string) (*model.Document, error) {
	var doc model.Document
	if err := s.db.First(&doc, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
		}
		return nil, err
	}
	return &doc, nil
}

// GetAllDocuments lists documents for the operations dashboard.
func (s *DocumentService) GetAllDocuments(tenantID string) ([]model.Document, error) {
	var documents []model.Document
	query := s.db.Order("created_at DESC")
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.Find(&documents).Error; err != nil {
		log.Printf("[GetAllDocuments] Database query error: %v", err)
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	return documents, nil
}
