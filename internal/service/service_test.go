package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatmac/marketplace/internal/db"
	"github.com/fatmac/marketplace/internal/events"
	"github.com/fatmac/marketplace/internal/hash"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/models"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/storage"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	return repo.New(newTestDB(t))
}

// recordingMailer captures every message instead of delivering it.
type recordingMailer struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *recordingMailer) byKind(kind mailer.Kind) []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mailer.Message
	for _, msg := range m.msgs {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

func newDiskStore(t *testing.T) *storage.Disk {
	t.Helper()
	return storage.NewDisk(t.TempDir())
}

// fileHeader builds a real multipart.FileHeader the way echo would hand it to
// a handler.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func createUser(t *testing.T, r *repo.GormRepo, name, email, password, role, status string) *models.User {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}

func createProduct(t *testing.T, r *repo.GormRepo, vendorID uint, name string, price float64, discount *float64) *models.Product {
	t.Helper()
	product := &models.Product{
		UserID:             vendorID,
		Name:               name,
		Price:              price,
		DiscountPercentage: discount,
		Stock:              100,
		Condition:          models.ConditionNew,
	}
	require.NoError(t, r.CreateProduct(context.Background(), product))
	return product
}

func newOrderService(r *repo.GormRepo, st storage.Store, m mailer.Mailer) *OrderService {
	return NewOrderService(r, st, m, events.Nop{})
}

func newAuthService(r *repo.GormRepo, m mailer.Mailer) *AuthService {
	return NewAuthService(r, m, events.Nop{}, []byte(testSecret), time.Hour)
}

func floatPtr(v float64) *float64 { return &v }
