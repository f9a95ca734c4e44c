package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/voltline/site/internal/domain"
	pfirestore "github.com/voltline/site/internal/platform/firestore"
	"github.com/voltline/site/internal/repositories"
)

const (
	mediaCollection   = "media"
	contactCollection = "contact_messages"
)

type mediaDocument struct {
	FileName    string    `firestore:"file_name"`
	ContentType string    `firestore:"content_type"`
	Size        int64     `firestore:"size"`
	ObjectName  string    `firestore:"object_name"`
	URL         string    `firestore:"url"`
	UploadedBy  string    `firestore:"uploaded_by,omitempty"`
	CreatedAt   time.Time `firestore:"created_at"`
}

type MediaRepository struct {
	coll *pfirestore.Collection[mediaDocument]
}

var _ repositories.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository(provider *pfirestore.Provider) *MediaRepository {
	return &MediaRepository{coll: pfirestore.NewCollection[mediaDocument](provider, mediaCollection)}
}

func (r *MediaRepository) Insert(ctx context.Context, item domain.MediaItem) error {
	return r.coll.Create(ctx, item.ID, mediaDocument{
		FileName:    item.FileName,
		ContentType: item.ContentType,
		Size:        item.Size,
		ObjectName:  item.ObjectName,
		URL:         item.URL,
		UploadedBy:  item.UploadedBy,
		CreatedAt:   item.CreatedAt.UTC(),
	})
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id)
}

func (r *MediaRepository) FindByID(ctx context.Context, id string) (domain.MediaItem, error) {
	doc, err := r.coll.Get(ctx, id)
	if err != nil {
		return domain.MediaItem{}, err
	}
	return decodeMedia(doc), nil
}

func (r *MediaRepository) List(ctx context.Context, opts repositories.ListOptions) (domain.ListResult[domain.MediaItem], error) {
	total, err := r.coll.Count(ctx, nil)
	if err != nil {
		return domain.ListResult[domain.MediaItem]{}, err
	}
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		return window(q.OrderBy("created_at", firestore.Desc), opts)
	})
	if err != nil {
		return domain.ListResult[domain.MediaItem]{}, err
	}
	items := make([]domain.MediaItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeMedia(doc))
	}
	return domain.ListResult[domain.MediaItem]{Items: items, Total: total}, nil
}

func decodeMedia(doc pfirestore.Document[mediaDocument]) domain.MediaItem {
	return domain.MediaItem{
		ID:          doc.ID,
		FileName:    doc.Data.FileName,
		ContentType: doc.Data.ContentType,
		Size:        doc.Data.Size,
		ObjectName:  doc.Data.ObjectName,
		URL:         doc.Data.URL,
		UploadedBy:  doc.Data.UploadedBy,
		CreatedAt:   doc.Data.CreatedAt,
	}
}

type contactDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Phone     string    `firestore:"phone,omitempty"`
	Company   string    `firestore:"company,omitempty"`
	Message   string    `firestore:"message"`
	Locale    string    `firestore:"locale"`
	ProductID string    `firestore:"product_id,omitempty"`
	RemoteIP  string    `firestore:"remote_ip,omitempty"`
	CreatedAt time.Time `firestore:"created_at"`
}

type ContactRepository struct {
	coll *pfirestore.Collection[contactDocument]
}

var _ repositories.ContactRepository = (*ContactRepository)(nil)

func NewContactRepository(provider *pfirestore.Provider) *ContactRepository {
	return &ContactRepository{coll: pfirestore.NewCollection[contactDocument](provider, contactCollection)}
}

func (r *ContactRepository) Insert(ctx context.Context, msg domain.ContactMessage) error {
	return r.coll.Create(ctx, msg.ID, contactDocument{
		Name:      msg.Name,
		Email:     msg.Email,
		Phone:     msg.Phone,
		Company:   msg.Company,
		Message:   msg.Message,
		Locale:    msg.Locale,
		ProductID: msg.ProductID,
		RemoteIP:  msg.RemoteIP,
		CreatedAt: msg.CreatedAt.UTC(),
	})
}

func (r *ContactRepository) List(ctx context.Context, opts repositories.ListOptions) (domain.ListResult[domain.ContactMessage], error) {
	total, err := r.coll.Count(ctx, nil)
	if err != nil {
		return domain.ListResult[domain.ContactMessage]{}, err
	}
	docs, err := r.coll.Query(ctx, func(q firestore.Query) firestore.Query {
		return window(q.OrderBy("created_at", firestore.Desc), opts)
	})
	if err != nil {
		return domain.ListResult[domain.ContactMessage]{}, err
	}
	items := make([]domain.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		d := doc.Data
		items = append(items, domain.ContactMessage{
			ID: doc.ID, Name: d.Name, Email: d.Email, Phone: d.Phone, Company: d.Company,
			Message: d.Message, Locale: d.Locale, ProductID: d.ProductID, RemoteIP: d.RemoteIP, CreatedAt: d.CreatedAt,
		})
	}
	return domain.ListResult[domain.ContactMessage]{Items: items, Total: total}, nil
}
