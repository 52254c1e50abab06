package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Hedwigsan/cookshare/internal/media"
	"github.com/Hedwigsan/cookshare/internal/models"
	"github.com/Hedwigsan/cookshare/internal/service"
)

type signupForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=8"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// fieldErrors turns a gin binding failure into per-field messages for
// re-rendering the form. Unknown error shapes collapse into a form-level
// message under "_form".
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_form"] = "invalid submission"
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = "this field is required"
		case "email":
			out[field] = "must be a valid email address"
		case "min":
			out[field] = "must be at least " + fe.Param() + " characters"
		default:
			out[field] = "invalid value"
		}
	}
	return out
}

// parseRecipeForm reads the multipart create/edit submission: scalar fields,
// the repeated ingredient and step arrays, per-step crop arrays, tags_csv and
// the uploaded images. Image ingestion is best-effort; a failed decode leaves
// the matching path empty and the recipe is still saved.
func parseRecipeForm(c *gin.Context, store *media.Store) (service.RecipeDraft, map[string]string) {
	draft := service.RecipeDraft{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: c.PostForm("description"),
		TagNames:    splitTags(c.PostForm("tags_csv")),
	}

	if draft.Title == "" {
		return draft, map[string]string{"title": "this field is required"}
	}

	if file, err := c.FormFile("image"); err == nil && file.Filename != "" {
		crop := media.ParseCrop(
			c.PostForm("crop_x"),
			c.PostForm("crop_y"),
			c.PostForm("crop_w"),
			c.PostForm("crop_h"),
		)
		if path := ingestUpload(store, file, crop); path != "" {
			draft.MainImage = &path
		}
	}

	draft.Ingredients = parseIngredients(c)
	draft.Steps = parseSteps(c, store)

	return draft, nil
}

func parseIngredients(c *gin.Context) []models.Ingredient {
	names := c.PostFormArray("ingredients_name")
	amounts := c.PostFormArray("ingredients_amount")
	units := c.PostFormArray("ingredients_unit")

	ingredients := make([]models.Ingredient, 0, len(names))
	for idx, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:    name,
			Amount:  optionalAt(amounts, idx),
			Unit:    optionalAt(units, idx),
			OrderNo: idx,
		})
	}
	return ingredients
}

// parseSteps walks the step arrays by index: body text, a fresh upload, a
// retained prior image (edit flow), and the per-step crop rectangle. Rows
// with neither text nor an image are dropped; image-only steps are kept.
func parseSteps(c *gin.Context, store *media.Store) []models.Step {
	bodies := c.PostFormArray("steps_body")
	existing := c.PostFormArray("steps_existing_image")
	cropXs := c.PostFormArray("steps_crop_x")
	cropYs := c.PostFormArray("steps_crop_y")
	cropWs := c.PostFormArray("steps_crop_w")
	cropHs := c.PostFormArray("steps_crop_h")

	var uploads []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		uploads = form.File["steps_image"]
	}

	maxLen := len(bodies)
	if len(uploads) > maxLen {
		maxLen = len(uploads)
	}
	if len(existing) > maxLen {
		maxLen = len(existing)
	}

	steps := make([]models.Step, 0, maxLen)
	for idx := 0; idx < maxLen; idx++ {
		body := ""
		if idx < len(bodies) {
			body = strings.TrimSpace(bodies[idx])
		}

		imagePath := ""
		if idx < len(uploads) && uploads[idx] != nil && uploads[idx].Filename != "" {
			crop := media.ParseCropAt(idx, cropXs, cropYs, cropWs, cropHs)
			imagePath = ingestUpload(store, uploads[idx], crop)
		}
		if imagePath == "" && idx < len(existing) {
			imagePath = strings.TrimSpace(existing[idx])
		}

		if body == "" && imagePath == "" {
			continue
		}

		step := models.Step{Body: body, OrderNo: idx}
		if imagePath != "" {
			path := imagePath
			step.ImagePath = &path
		}
		steps = append(steps, step)
	}
	return steps
}

func ingestUpload(store *media.Store, header *multipart.FileHeader, crop *media.CropRect) string {
	f, err := header.Open()
	if err != nil {
		return ""
	}
	defer f.Close()
	return store.Ingest(f, crop)
}

func optionalAt(values []string, idx int) *string {
	if idx >= len(values) {
		return nil
	}
	v := strings.TrimSpace(values[idx])
	if v == "" {
		return nil
	}
	return &v
}

func splitTags(csv string) []string {
	var names []string
	for _, raw := range strings.Split(csv, ",") {
		if name := strings.TrimSpace(raw); name != "" {
			names = append(names, name)
		}
	}
	return names
}
