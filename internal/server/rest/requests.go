package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
	"github.com/punit-mobi/RBAC-project/internal/server/storage"
)

const (
	maxBodyBytes    = 10 << 20
	photoFormField  = "profile_photo"
	dateLayout      = "2006-01-02"
	multipartMemory = storage.MaxPhotoSize + 1<<20
)

var errPhotoTooLarge = errors.New(msgFileTooLarge)

type registerRequest struct {
	FirstName              string         `json:"first_name" validate:"required,max=50"`
	LastName               string         `json:"last_name" validate:"omitempty,max=50"`
	Email                  string         `json:"email" validate:"required,email"`
	Password               string         `json:"password" validate:"required,min=8,max=128"`
	About                  string         `json:"about" validate:"omitempty,max=1000"`
	Address                map[string]any `json:"address" validate:"omitempty,jsonmax=200"`
	IsAdmin                bool           `json:"is_admin"`
	Gender                 string         `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth            string         `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EducationQualification string         `json:"education_qualification" validate:"omitempty,max=200"`
}

func (r *registerRequest) input(photo *services.PhotoUpload) services.RegisterInput {
	return services.RegisterInput{
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		Email:                  r.Email,
		Password:               r.Password,
		About:                  r.About,
		Address:                r.Address,
		Gender:                 r.Gender,
		DateOfBirth:            parseDate(r.DateOfBirth),
		EducationQualification: r.EducationQualification,
		IsAdmin:                r.IsAdmin,
		Photo:                  photo,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type updateUserRequest struct {
	FirstName              *string        `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName               *string        `json:"last_name" validate:"omitempty,max=50"`
	About                  *string        `json:"about" validate:"omitempty,max=1000"`
	Address                map[string]any `json:"address" validate:"omitempty,jsonmax=200"`
	Gender                 *string        `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth            *string        `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EducationQualification *string        `json:"education_qualification" validate:"omitempty,max=200"`
}

func (r *updateUserRequest) patch() *models.UserPatch {
	p := &models.UserPatch{
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		About:                  r.About,
		Address:                r.Address,
		Gender:                 r.Gender,
		EducationQualification: r.EducationQualification,
	}
	if r.DateOfBirth != nil {
		p.DateOfBirth = parseDate(*r.DateOfBirth)
	}
	return p
}

type assignRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid"`
}

type createRoleRequest struct {
	Name        string   `json:"name" validate:"required,oneof=admin editor viewer super_admin"`
	Description string   `json:"description" validate:"omitempty,max=200"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type updateRoleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,oneof=admin editor viewer super_admin"`
	Description *string  `json:"description" validate:"omitempty,max=200"`
	Permissions []string `json:"permissions" validate:"omitempty,min=1"`
	IsActive    *bool    `json:"is_active"`
}

func (r *updateRoleRequest) patch() *models.RolePatch {
	return &models.RolePatch{
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		IsActive:    r.IsActive,
	}
}

type createPostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"omitempty,max=5000"`
}

type updatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1,max=5000"`
}

func (r *updatePostRequest) patch() *models.PostPatch {
	return &models.PostPatch{Title: r.Title, Content: r.Content}
}

type pageQuery struct {
	Page  int `schema:"page" validate:"gte=1"`
	Limit int `schema:"limit" validate:"gte=1,lte=100"`
}

func (q *pageQuery) page() services.Page {
	return services.Page{Page: q.Page, Limit: q.Limit}
}

type masterDataQuery struct {
	Type     *string `schema:"type"`
	IsActive *bool   `schema:"is_active"`
}

type masterDataTypeQuery struct {
	IsActive *bool `schema:"is_active"`
}

// readBody returns the request body as a generic object together with an
// optional profile photo. JSON and multipart/form-data bodies are accepted;
// an empty body yields an empty object.
func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, *services.PhotoUpload, error) {
	raw := map[string]any{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, nil, fmt.Errorf("parse multipart form: %w", err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				raw[k] = vs[0]
			}
		}
		photo, err := readPhoto(r)
		if err != nil {
			return nil, nil, err
		}
		return raw, photo, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, fmt.Errorf("parse form: %w", err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				raw[k] = vs[0]
			}
		}
		return raw, nil, nil
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("decode body: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil, nil
}

func readPhoto(r *http.Request) (*services.PhotoUpload, error) {
	files := r.MultipartForm.File[photoFormField]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > storage.MaxPhotoSize {
		return nil, errPhotoTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", photoFormField, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, storage.MaxPhotoSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", photoFormField, err)
	}
	if len(data) > storage.MaxPhotoSize {
		return nil, errPhotoTooLarge
	}
	return &services.PhotoUpload{Data: data}, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
