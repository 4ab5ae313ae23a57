package models

import (
	"strings"
	"time"
)

// Plaque is a vehicle-plate registration record. QRCode holds a PNG data URL
// encoding Numero.
type Plaque struct {
	ID          string    `json:"id"`
	Numero      string    `json:"numero"`
	Nom         string    `json:"nom"`
	PostNom     string    `json:"postNom"`
	Prenom      string    `json:"prenom"`
	District    string    `json:"district"`
	Territoire  string    `json:"territoire"`
	Secteur     string    `json:"secteur"`
	Village     string    `json:"village"`
	Province    string    `json:"province"`
	Nationalite string    `json:"nationalite"`
	Adresse     string    `json:"adresse"`
	Telephone   string    `json:"telephone"`
	Email       string    `json:"email"`
	QRCode      string    `json:"qrCode"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// OwnerName renders the registered person's name parts.
func (p Plaque) OwnerName() string {
	return joinNonEmpty(p.Nom, p.PostNom, p.Prenom)
}

// QRFileName is the download name of the plaque's QR image. Slashes of the
// plate number are not valid in file or object names and become dashes.
func (p Plaque) QRFileName() string {
	return "plaque-" + strings.ReplaceAll(p.Numero, "/", "-") + ".png"
}

// PlaqueInput carries the caller-supplied fields of a new plaque.
type PlaqueInput struct {
	Numero      string `json:"numero" validate:"required,plate"`
	Nom         string `json:"nom" validate:"required"`
	PostNom     string `json:"postNom" validate:"required"`
	Prenom      string `json:"prenom" validate:"required"`
	District    string `json:"district" validate:"required"`
	Territoire  string `json:"territoire" validate:"required"`
	Secteur     string `json:"secteur" validate:"required"`
	Village     string `json:"village" validate:"required"`
	Province    string `json:"province" validate:"required"`
	Nationalite string `json:"nationalite" validate:"required"`
	Adresse     string `json:"adresse" validate:"required"`
	Telephone   string `json:"telephone" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	CreatedBy   string `json:"createdBy"`
}

// NewPlaque materialises in with the given identity and QR image.
func (in PlaqueInput) NewPlaque(id string, createdAt time.Time, qrCode string) Plaque {
	return Plaque{
		ID:          id,
		Numero:      in.Numero,
		Nom:         in.Nom,
		PostNom:     in.PostNom,
		Prenom:      in.Prenom,
		District:    in.District,
		Territoire:  in.Territoire,
		Secteur:     in.Secteur,
		Village:     in.Village,
		Province:    in.Province,
		Nationalite: in.Nationalite,
		Adresse:     in.Adresse,
		Telephone:   in.Telephone,
		Email:       in.Email,
		QRCode:      qrCode,
		CreatedAt:   createdAt,
		CreatedBy:   in.CreatedBy,
	}
}

// PlaquePatch is a partial update. ID, CreatedAt, CreatedBy and QRCode are
// not patchable; QRCode follows Numero.
type PlaquePatch struct {
	Numero      *string `json:"numero,omitempty" validate:"omitempty,plate"`
	Nom         *string `json:"nom,omitempty"`
	PostNom     *string `json:"postNom,omitempty"`
	Prenom      *string `json:"prenom,omitempty"`
	District    *string `json:"district,omitempty"`
	Territoire  *string `json:"territoire,omitempty"`
	Secteur     *string `json:"secteur,omitempty"`
	Village     *string `json:"village,omitempty"`
	Province    *string `json:"province,omitempty"`
	Nationalite *string `json:"nationalite,omitempty"`
	Adresse     *string `json:"adresse,omitempty"`
	Telephone   *string `json:"telephone,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Apply returns p with the patch merged in, leaving QRCode alone.
func (pp PlaquePatch) Apply(p Plaque) Plaque {
	setIf(&p.Numero, pp.Numero)
	setIf(&p.Nom, pp.Nom)
	setIf(&p.PostNom, pp.PostNom)
	setIf(&p.Prenom, pp.Prenom)
	setIf(&p.District, pp.District)
	setIf(&p.Territoire, pp.Territoire)
	setIf(&p.Secteur, pp.Secteur)
	setIf(&p.Village, pp.Village)
	setIf(&p.Province, pp.Province)
	setIf(&p.Nationalite, pp.Nationalite)
	setIf(&p.Adresse, pp.Adresse)
	setIf(&p.Telephone, pp.Telephone)
	setIf(&p.Email, pp.Email)
	return p
}

// IsEmpty reports whether the patch changes nothing.
func (pp PlaquePatch) IsEmpty() bool {
	return pp == PlaquePatch{}
}
