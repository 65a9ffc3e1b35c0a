package attachment_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/attachment"
	attachmentPostgres "github.com/frahmantamala/task-management/internal/attachment/postgres"
	attachmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/attachment"
	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
	taskDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/task"
	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
	"github.com/frahmantamala/task-management/internal/task"
	taskPostgres "github.com/frahmantamala/task-management/internal/task/postgres"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryStorage struct {
	objects map[string][]byte
	putErr  error
}

func (m *memoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) PresignGet(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

var _ = Describe("Attachment Service", func() {
	var (
		storage *memoryStorage
		service *attachment.Service
		ctx     context.Context
		kim     *internal.Principal
		lee     *internal.Principal
		taskID  int64
		lg      *slog.Logger
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&departmentDatamodel.Department{}, &userDatamodel.User{},
			&taskDatamodel.Task{}, &taskDatamodel.Comment{}, &attachmentDatamodel.Attachment{},
		)).To(Succeed())

		users := []userDatamodel.User{
			{Username: "kim", PasswordHash: "x", Role: internal.RoleEmployee, IsActive: true},
			{Username: "lee", PasswordHash: "x", Role: internal.RoleEmployee, IsActive: true},
		}
		Expect(db.Create(&users).Error).To(Succeed())
		kim = &internal.Principal{ID: users[0].ID, Username: "kim", Role: internal.RoleEmployee}
		lee = &internal.Principal{ID: users[1].ID, Username: "lee", Role: internal.RoleEmployee}

		row := taskDatamodel.Task{Title: "설계 문서", Status: "TODO", Priority: "MEDIUM"}
		Expect(db.Create(&row).Error).To(Succeed())
		taskID = row.ID

		lg = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
		storage = &memoryStorage{objects: map[string][]byte{}}
		tasks := task.NewService(taskPostgres.NewTaskRepository(db), nil, lg)
		service = attachment.NewService(attachmentPostgres.NewAttachmentRepository(db), tasks, storage, lg)
		ctx = context.Background()
	})

	upload := func(caller *internal.Principal) *attachment.Attachment {
		a, err := service.Upload(ctx, taskID, &attachment.Upload{
			Filename: "설계서.PDF", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF"),
		}, caller)
		Expect(err).NotTo(HaveOccurred())
		return a
	}

	It("stores the body under a task-scoped key and signs a download link", func() {
		a := upload(kim)

		Expect(a.File).To(MatchRegexp(`^attachments/` + strconv.FormatInt(taskID, 10) + `/[A-Za-z0-9_-]{21}\.pdf$`))
		Expect(storage.objects).To(HaveKeyWithValue(a.File, []byte("%PDF")))
		Expect(a.Filename).To(Equal("설계서.PDF"))
		Expect(a.UploadedByName).To(Equal("kim"))
		Expect(a.URL).To(Equal("https://files.test/" + a.File))

		items, err := service.List(ctx, taskID)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
		Expect(items[0].UploadedByName).To(Equal("kim"))
	})

	It("rejects uploads for a missing task", func() {
		_, err := service.Upload(ctx, 999, &attachment.Upload{Filename: "a.txt", Body: strings.NewReader("x")}, kim)
		Expect(err).To(Equal(internal.ErrTaskNotFound))
		Expect(storage.objects).To(BeEmpty())
	})

	It("reports storage failures as bad gateway", func() {
		storage.putErr = errors.New("SlowDown")

		_, err := service.Upload(ctx, taskID, &attachment.Upload{Filename: "a.txt", Body: strings.NewReader("x")}, kim)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
	})

	It("lets only the uploader or a manager delete", func() {
		a := upload(kim)

		Expect(service.Delete(ctx, a.ID, lee)).To(Equal(internal.ErrUnauthorizedAccess))
		Expect(service.Delete(ctx, a.ID, kim)).To(Succeed())
		Expect(storage.objects).To(BeEmpty())
		Expect(service.Delete(ctx, a.ID, kim)).To(Equal(internal.ErrAttachmentNotFound))

		b := upload(kim)
		boss := &internal.Principal{ID: 77, Username: "boss", Role: internal.RoleManager}
		Expect(service.Delete(ctx, b.ID, boss)).To(Succeed())
	})

	Describe("Handler", func() {
		var router *chi.Mux

		newRouter := func(maxSize int64) *chi.Mux {
			h := attachment.NewHandler(transport.NewBaseHandler(lg), service, maxSize)
			r := chi.NewRouter()
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(internal.ContextWithPrincipal(req.Context(), kim)))
				})
			})
			r.Get("/tasks/{id}/attachments", h.ListAttachments)
			r.Post("/tasks/{id}/attachments", h.UploadAttachment)
			r.Delete("/attachments/{id}", h.DeleteAttachment)
			return r
		}

		multipartBody := func(field, filename string, content []byte) (*bytes.Buffer, string) {
			body := &bytes.Buffer{}
			mw := multipart.NewWriter(body)
			fw, err := mw.CreateFormFile(field, filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = fw.Write(content)
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())
			return body, mw.FormDataContentType()
		}

		BeforeEach(func() {
			router = newRouter(0)
		})

		post := func(r *chi.Mux, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/tasks/"+strconv.FormatInt(taskID, 10)+"/attachments", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w
		}

		It("uploads, lists and deletes", func() {
			body, ct := multipartBody("file", "회의록.txt", []byte("안건"))
			w := post(router, body, ct)
			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).To(ContainSubstring(`"filename":"회의록.txt"`))
			Expect(w.Body.String()).To(ContainSubstring(`"uploaded_by_name":"kim"`))

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+strconv.FormatInt(taskID, 10)+"/attachments", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"url":"https://files.test/attachments/`))
		})

		It("requires the file field", func() {
			body, ct := multipartBody("document", "a.txt", []byte("x"))
			w := post(router, body, ct)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("file is required"))
		})

		It("rejects bodies above the configured limit", func() {
			body, ct := multipartBody("file", "big.bin", bytes.Repeat([]byte("a"), 4096))
			w := post(newRouter(1024), body, ct)
			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(storage.objects).To(BeEmpty())
		})
	})
})
