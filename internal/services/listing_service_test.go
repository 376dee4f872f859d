package services_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"testing"

	"aportar/internal/models"
	"aportar/internal/repositories"
	"aportar/internal/services"
	"aportar/internal/uploads"

	"github.com/stretchr/testify/assert"
)

// fileHeader builds a real multipart.FileHeader the way a browser upload
// would arrive.
func fileHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	assert.NoError(t, err)
	_, err = fw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	assert.NoError(t, err)
	return form.File["image"][0]
}

func newListingService(t *testing.T, kind models.ListingKind) (*services.ListingService, *uploads.Manager) {
	t.Helper()
	uploadMgr, err := uploads.NewManager(t.TempDir())
	assert.NoError(t, err)
	repo := repositories.NewMemoryListingRepository(kind)
	return services.NewListingService(repo, uploadMgr, nil), uploadMgr
}

func TestListingService_Create(t *testing.T) {
	svc, _ := newListingService(t, models.KindDonation)

	listing, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Ropa",
		Description: "Ropa de invierno en buen estado",
		Location:    "Centro",
	}, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, models.KindDonation, listing.Kind)
	assert.Equal(t, "ana-id", listing.UserID)
	assert.False(t, listing.CreatedAt.IsZero())
	assert.Empty(t, listing.Image)

	listings, err := svc.ListByOwner("ana-id")
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, "Ropa", listings[0].Title)
	assert.Empty(t, listings[0].Image)
}

func TestListingService_CreateDonationDropsContact(t *testing.T) {
	svc, _ := newListingService(t, models.KindDonation)

	listing, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Muebles",
		Description: "Mesa y sillas",
		Location:    "Norte",
		Contact:     "555-0100",
	}, nil)
	assert.NoError(t, err)
	assert.Empty(t, listing.Contact)
}

func TestListingService_UpdateForbiddenForNonOwner(t *testing.T) {
	svc, _ := newListingService(t, models.KindService)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Clases de guitarra",
		Description: "Clases a domicilio",
		Location:    "Centro",
		Contact:     "555-0100",
	}, nil)
	assert.NoError(t, err)

	_, err = svc.Update(created.ID, "luis-id", models.ListingFields{
		Title:       "Otro titulo",
		Description: "Otra descripcion",
		Location:    "Sur",
		Contact:     "555-9999",
	}, nil)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// The record is unchanged.
	got, err := svc.Get(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Clases de guitarra", got.Title)
	assert.Equal(t, "555-0100", got.Contact)
}

func TestListingService_DeleteForbiddenForNonOwner(t *testing.T) {
	svc, _ := newListingService(t, models.KindHelp)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Necesito ayuda con mudanza",
		Description: "Este sabado",
		Location:    "Oeste",
		Contact:     "555-0100",
	}, nil)
	assert.NoError(t, err)

	err = svc.Delete(created.ID, "luis-id")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Get(created.ID)
	assert.NoError(t, err)
}

func TestListingService_DeleteRemovesImageFile(t *testing.T) {
	svc, uploadMgr := newListingService(t, models.KindDonation)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Bicicleta",
		Description: "Rodado 26",
		Location:    "Centro",
	}, fileHeader(t, "bici.jpg", "fake image bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "bici.jpg", created.Image)
	assert.FileExists(t, uploadMgr.Path("bici.jpg"))

	err = svc.Delete(created.ID, "ana-id")
	assert.NoError(t, err)
	assert.NoFileExists(t, uploadMgr.Path("bici.jpg"))

	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListingService_DeleteWithoutImage(t *testing.T) {
	svc, _ := newListingService(t, models.KindDonation)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Libros",
		Description: "Novelas usadas",
		Location:    "Centro",
	}, nil)
	assert.NoError(t, err)

	err = svc.Delete(created.ID, "ana-id")
	assert.NoError(t, err)

	_, err = svc.Get(created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListingService_UpdateReplacesImage(t *testing.T) {
	svc, uploadMgr := newListingService(t, models.KindHelp)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Arreglo de techo",
		Description: "Goteras",
		Location:    "Centro",
		Contact:     "555-0100",
	}, fileHeader(t, "techo_viejo.jpg", "old image"))
	assert.NoError(t, err)
	assert.FileExists(t, uploadMgr.Path("techo_viejo.jpg"))

	updated, err := svc.Update(created.ID, "ana-id", models.ListingFields{
		Title:       "Arreglo de techo",
		Description: "Goteras en dos habitaciones",
		Location:    "Centro",
		Contact:     "555-0100",
	}, fileHeader(t, "techo_nuevo.jpg", "new image"))
	assert.NoError(t, err)
	assert.Equal(t, "techo_nuevo.jpg", updated.Image)
	assert.NoFileExists(t, uploadMgr.Path("techo_viejo.jpg"))
	assert.FileExists(t, uploadMgr.Path("techo_nuevo.jpg"))
}

func TestListingService_UpdateWithoutImageKeepsFile(t *testing.T) {
	svc, uploadMgr := newListingService(t, models.KindDonation)

	created, err := svc.Create("ana-id", models.ListingFields{
		Title:       "Juguetes",
		Description: "Varios",
		Location:    "Centro",
	}, fileHeader(t, "juguetes.jpg", "image"))
	assert.NoError(t, err)

	updated, err := svc.Update(created.ID, "ana-id", models.ListingFields{
		Title:       "Juguetes de madera",
		Description: "Varios",
		Location:    "Centro",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "juguetes.jpg", updated.Image)
	assert.FileExists(t, uploadMgr.Path("juguetes.jpg"))

	// Check the file body survived untouched.
	data, err := os.ReadFile(uploadMgr.Path("juguetes.jpg"))
	assert.NoError(t, err)
	assert.Equal(t, "image", string(data))
}

func TestListingService_UpdateNotFound(t *testing.T) {
	svc, _ := newListingService(t, models.KindService)

	_, err := svc.Update("missing-id", "ana-id", models.ListingFields{
		Title:       "x",
		Description: "y",
		Location:    "z",
	}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = svc.Delete("missing-id", "ana-id")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
