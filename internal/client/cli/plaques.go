package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/export"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/qr"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/services"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

const (
	defaultNationalite = "Congolaise"
	autoNumero         = "auto"
	msgQRFailed        = "Erreur lors de la génération du code QR"
)

// plaqueField binds a prompt label to a PlaqueInput field.
type plaqueField struct {
	label string
	get   func(*models.PlaqueInput) *string
	patch func(*models.PlaquePatch) **string
}

var plaqueFields = []plaqueField{
	{"Nom", func(in *models.PlaqueInput) *string { return &in.Nom }, func(p *models.PlaquePatch) **string { return &p.Nom }},
	{"Post-nom", func(in *models.PlaqueInput) *string { return &in.PostNom }, func(p *models.PlaquePatch) **string { return &p.PostNom }},
	{"Prénom", func(in *models.PlaqueInput) *string { return &in.Prenom }, func(p *models.PlaquePatch) **string { return &p.Prenom }},
	{"District", func(in *models.PlaqueInput) *string { return &in.District }, func(p *models.PlaquePatch) **string { return &p.District }},
	{"Territoire", func(in *models.PlaqueInput) *string { return &in.Territoire }, func(p *models.PlaquePatch) **string { return &p.Territoire }},
	{"Secteur", func(in *models.PlaqueInput) *string { return &in.Secteur }, func(p *models.PlaquePatch) **string { return &p.Secteur }},
	{"Village", func(in *models.PlaqueInput) *string { return &in.Village }, func(p *models.PlaquePatch) **string { return &p.Village }},
	{"Province", func(in *models.PlaqueInput) *string { return &in.Province }, func(p *models.PlaquePatch) **string { return &p.Province }},
	{"Nationalité", func(in *models.PlaqueInput) *string { return &in.Nationalite }, func(p *models.PlaquePatch) **string { return &p.Nationalite }},
	{"Adresse", func(in *models.PlaqueInput) *string { return &in.Adresse }, func(p *models.PlaquePatch) **string { return &p.Adresse }},
	{"Téléphone", func(in *models.PlaqueInput) *string { return &in.Telephone }, func(p *models.PlaquePatch) **string { return &p.Telephone }},
	{"Email (facultatif)", func(in *models.PlaqueInput) *string { return &in.Email }, func(p *models.PlaquePatch) **string { return &p.Email }},
}

func (a *App) ListPlaques(ctx context.Context) error {
	plaques := a.data.Plaques()
	if len(plaques) == 0 {
		a.println("Aucune plaque enregistrée.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMÉRO\tPROPRIÉTAIRE\tPROVINCE\tQR\tCRÉÉE LE")
	for _, p := range plaques {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Numero, p.OwnerName(), p.Province, qrMark(p), p.CreatedAt.Format("02/01/2006"))
	}
	return tw.Flush()
}

func (a *App) AddPlaque(ctx context.Context) error {
	u, ok := a.auth.CurrentUser()
	if !ok {
		return common.ErrNotAuthenticated
	}

	numero, err := a.prompt("Numéro de plaque (vide pour générer)")
	if err != nil {
		return err
	}
	if numero == "" || strings.EqualFold(numero, autoNumero) {
		if numero, err = a.data.GenerateUniquePlateNumber(); err != nil {
			return a.fail(ctx, "Impossible de générer un numéro libre", err)
		}
		a.printf("Numéro généré: %s\n", numero)
	}

	in := models.PlaqueInput{Numero: numero, CreatedBy: u.ID}
	for _, f := range plaqueFields {
		if *f.get(&in), err = a.prompt(f.label); err != nil {
			return err
		}
	}
	if in.Nationalite == "" {
		in.Nationalite = defaultNationalite
	}

	if err := a.validate.Struct(in); err != nil {
		a.println(describeValidation(err))
		return err
	}

	out, err := a.data.AddPlaque(ctx, in, services.QRRequired)
	if errors.Is(err, common.ErrQREncode) {
		out, err = a.retryWithoutQR(ctx, func() (services.PlaqueOutcome, error) {
			return a.data.AddPlaque(ctx, in, services.QROptional)
		}, err)
	}
	if err != nil {
		return err
	}
	if out.Stored {
		a.printf("Plaque enregistrée: %s (id %s)\n", out.Plaque.Numero, out.Plaque.ID)
	}
	return nil
}

func (a *App) EditPlaque(ctx context.Context) error {
	p, err := a.pickPlaque()
	if err != nil {
		return err
	}

	var patch models.PlaquePatch
	numero, err := a.promptKeep("Numéro de plaque ('auto' pour générer)", p.Numero)
	if err != nil {
		return err
	}
	if numero != nil && strings.EqualFold(*numero, autoNumero) {
		n, err := a.data.GenerateUniquePlateNumber()
		if err != nil {
			return a.fail(ctx, "Impossible de générer un numéro libre", err)
		}
		a.printf("Numéro généré: %s\n", n)
		numero = &n
	}
	patch.Numero = numero

	cur := models.PlaqueInput{
		Nom: p.Nom, PostNom: p.PostNom, Prenom: p.Prenom,
		District: p.District, Territoire: p.Territoire, Secteur: p.Secteur, Village: p.Village,
		Province: p.Province, Nationalite: p.Nationalite,
		Adresse: p.Adresse, Telephone: p.Telephone, Email: p.Email,
	}
	for _, f := range plaqueFields {
		if *f.patch(&patch), err = a.promptKeep(f.label, *f.get(&cur)); err != nil {
			return err
		}
	}

	if patch.IsEmpty() {
		a.println("Aucune modification.")
		return nil
	}
	if err := a.validate.Struct(patch); err != nil {
		a.println(describeValidation(err))
		return err
	}

	out, err := a.data.UpdatePlaque(ctx, p.ID, patch, services.QRRequired)
	if errors.Is(err, common.ErrQREncode) {
		out, err = a.retryWithoutQR(ctx, func() (services.PlaqueOutcome, error) {
			return a.data.UpdatePlaque(ctx, p.ID, patch, services.QROptional)
		}, err)
	}
	if err != nil {
		return err
	}
	switch {
	case !out.Found:
		a.println("Plaque introuvable.")
	case out.Stored:
		a.println("Plaque modifiée.")
	}
	return nil
}

// retryWithoutQR reports a failed QR generation and, if the user agrees,
// runs retry, which stores the record without an image.
func (a *App) retryWithoutQR(ctx context.Context, retry func() (services.PlaqueOutcome, error), cause error) (services.PlaqueOutcome, error) {
	a.println(msgQRFailed)
	yes, err := a.confirm("Enregistrer sans code QR ?")
	if err != nil {
		return services.PlaqueOutcome{}, err
	}
	if !yes {
		return services.PlaqueOutcome{}, cause
	}

	out, err := retry()
	if err != nil {
		return out, a.fail(ctx, "Erreur lors de l'enregistrement", err)
	}
	return out, nil
}

func (a *App) DeletePlaque(ctx context.Context) error {
	p, err := a.pickPlaque()
	if err != nil {
		return err
	}
	yes, err := a.confirm("Êtes-vous sûr de vouloir supprimer cette plaque ?")
	if err != nil || !yes {
		return err
	}

	ok, err := a.data.DeletePlaque(ctx, p.ID)
	if err != nil {
		return a.fail(ctx, "Erreur lors de la suppression", err)
	}
	if ok {
		a.println("Plaque supprimée.")
	}
	return nil
}

func (a *App) ShowPlaque(ctx context.Context) error {
	p, err := a.pickPlaque()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"Numéro", p.Numero},
		{"Propriétaire", p.OwnerName()},
		{"District", p.District},
		{"Territoire", p.Territoire},
		{"Secteur", p.Secteur},
		{"Village", p.Village},
		{"Province", p.Province},
		{"Nationalité", p.Nationalite},
		{"Adresse", p.Adresse},
		{"Téléphone", p.Telephone},
		{"Email", p.Email},
		{"Créée le", p.CreatedAt.Format("02/01/2006 15:04")},
		{"Créée par", a.creatorName(p.CreatedBy)},
		{"Code QR", qrDetails(p)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func (a *App) GeneratePlate(ctx context.Context) error {
	n, err := a.data.GenerateUniquePlateNumber()
	if err != nil {
		return a.fail(ctx, "Impossible de générer un numéro libre", err)
	}
	a.println(n)
	return nil
}

func (a *App) ExportQR(ctx context.Context) error {
	p, err := a.pickPlaque()
	if err != nil {
		return err
	}

	loc, err := export.Plaque(ctx, a.exporter, p)
	a.metrics.RecordQRExport(a.exporter.Backend(), err)
	if errors.Is(err, export.ErrNoQRImage) {
		a.println("Cette plaque n'a pas de code QR.")
		return err
	}
	if err != nil {
		return a.fail(ctx, "Erreur lors de l'export du code QR", err)
	}
	a.log.Info(ctx, "qr exported", "numero", p.Numero, "backend", a.exporter.Backend(), "location", loc)
	a.printf("Code QR exporté: %s\n", loc)
	return nil
}

func (a *App) pickPlaque() (models.Plaque, error) {
	id, err := a.prompt("Identifiant ou numéro de la plaque")
	if err != nil {
		return models.Plaque{}, err
	}
	if p, ok := a.data.Plaque(id); ok {
		return p, nil
	}
	for _, p := range a.data.Plaques() {
		if p.Numero == id {
			return p, nil
		}
	}
	a.println("Plaque introuvable.")
	return models.Plaque{}, common.ErrorNotFound
}

// creatorName resolves a CreatedBy reference. The author may be a roster
// account, a managed user or gone.
func (a *App) creatorName(id string) string {
	if u, ok := a.data.User(id); ok {
		return u.DisplayName()
	}
	if u, ok := a.auth.CurrentUser(); ok && u.ID == id {
		return u.DisplayName()
	}
	for _, u := range services.DefaultRoster(time.Time{}) {
		if u.ID == id {
			return u.DisplayName()
		}
	}
	return id
}

func qrMark(p models.Plaque) string {
	if p.QRCode == "" {
		return "-"
	}
	return "oui"
}

func qrDetails(p models.Plaque) string {
	if p.QRCode == "" {
		return "absent"
	}
	png, err := qr.DecodeDataURL(p.QRCode)
	if err != nil {
		return "illisible"
	}
	return fmt.Sprintf("PNG, %d octets (exportqr pour l'enregistrer)", len(png))
}
