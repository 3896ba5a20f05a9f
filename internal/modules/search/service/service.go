package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/pkg/apperror"
	"anoa.com/educonnect/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const (
	MaterialsIndex = "materials"
	signerKeyName  = "MaterialTenantTokenSigner"
)

type MeiliSearchService interface {
	IndexMaterial(material *entity.LectureMaterial) error
	DeleteMaterial(id string) error
	GenerateSearchToken(courseIDs []uuid.UUID) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	tokenTTL      time.Duration
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	s := &meiliSearchService{
		client:   client,
		tokenTTL: 24 * time.Hour,
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == signerKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign material search tenant tokens",
		Name:        signerKeyName,
		Actions:     []string{"search"},
		Indexes:     []string{MaterialsIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"course_id", "is_published", "file_type", "week_number"}
	if _, err := s.client.Index(MaterialsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update materials filterable attributes: %v", err)
	}

	sortable := []string{"created_at", "week_number"}
	if _, err := s.client.Index(MaterialsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update materials sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

type meiliMaterialDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseID    string `json:"course_id"`
	CourseName  string `json:"course_name"`
	FileType    string `json:"file_type"`
	WeekNumber  *int   `json:"week_number"`
	IsPublished bool   `json:"is_published"`
	CreatedAt   int64  `json:"created_at"`
}

func newMaterialDoc(material *entity.LectureMaterial) meiliMaterialDoc {
	return meiliMaterialDoc{
		ID:          material.ID.String(),
		Title:       sanitize.Inline(material.Title),
		Description: sanitize.Inline(material.Description),
		CourseID:    material.CourseID.String(),
		CourseName:  material.Course.Name,
		FileType:    material.FileType,
		WeekNumber:  material.WeekNumber,
		IsPublished: material.IsPublished,
		CreatedAt:   material.CreatedAt.Unix(),
	}
}

func (s *meiliSearchService) IndexMaterial(material *entity.LectureMaterial) error {
	doc := newMaterialDoc(material)

	task, err := s.client.Index(MaterialsIndex).AddDocuments([]meiliMaterialDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed material %s, task id: %d", material.ID, task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteMaterial(id string) error {
	_, err := s.client.Index(MaterialsIndex).DeleteDocument(id)
	return err
}

// GenerateSearchToken signs a tenant token that only sees published
// materials of the given courses.
func (s *meiliSearchService) GenerateSearchToken(courseIDs []uuid.UUID) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}
	if len(courseIDs) == 0 {
		return "", fmt.Errorf("no active enrollments: %w", apperror.ErrNotEnrolled)
	}

	searchRules := map[string]any{
		MaterialsIndex: map[string]any{
			"filter": materialFilter(courseIDs),
		},
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	})
}

func materialFilter(courseIDs []uuid.UUID) string {
	quoted := make([]string, len(courseIDs))
	for i, id := range courseIDs {
		quoted[i] = "'" + id.String() + "'"
	}
	return fmt.Sprintf("is_published = true AND course_id IN [%s]", strings.Join(quoted, ", "))
}

func strPtr(s string) *string {
	return &s
}
