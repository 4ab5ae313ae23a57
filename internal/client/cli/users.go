package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

func (a *App) ListUsers(ctx context.Context) error {
	users := a.data.Users()
	if len(users) == 0 {
		a.println("Aucun utilisateur.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOM\tEMAIL\tRÔLE\tCRÉÉ LE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.DisplayName(), u.Email, roleLabel(u.Role), u.CreatedAt.Format("02/01/2006"))
	}
	return tw.Flush()
}

func (a *App) AddUser(ctx context.Context) error {
	in, err := a.promptUserInput(false)
	if err != nil {
		return err
	}
	if err := a.validate.Struct(in); err != nil {
		a.println(describeValidation(err))
		return err
	}

	u, err := a.data.AddUser(ctx, in)
	if err != nil {
		return a.fail(ctx, "Erreur lors de l'enregistrement", err)
	}
	a.printf("Utilisateur créé: %s (id %s)\n", u.DisplayName(), u.ID)
	return nil
}

func (a *App) EditUser(ctx context.Context) error {
	u, err := a.pickUser()
	if err != nil {
		return err
	}

	var patch models.UserPatch
	fields := []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Email", u.Email, &patch.Email},
		{"Nom", u.Nom, &patch.Nom},
		{"Post-nom", u.PostNom, &patch.PostNom},
		{"Prénom", u.Prenom, &patch.Prenom},
	}
	for _, f := range fields {
		if *f.dst, err = a.promptKeep(f.label, f.cur); err != nil {
			return err
		}
	}

	role, err := a.promptKeep("Rôle (admin/user)", string(u.Role))
	if err != nil {
		return err
	}
	if role != nil {
		patch.Role = models.Ptr(models.Role(*role))
	}

	password, err := getPassword(a.out, "Nouveau mot de passe (laisser vide pour ne pas changer)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) > 0 {
		patch.Password = models.Ptr(string(password))
	}

	if err := a.validate.Struct(patch); err != nil {
		a.println(describeValidation(err))
		return err
	}

	ok, err := a.data.UpdateUser(ctx, u.ID, patch)
	if err != nil {
		return a.fail(ctx, "Erreur lors de l'enregistrement", err)
	}
	if !ok {
		a.println("Utilisateur introuvable.")
		return nil
	}
	a.println("Utilisateur modifié.")
	return nil
}

func (a *App) DeleteUser(ctx context.Context) error {
	u, err := a.pickUser()
	if err != nil {
		return err
	}
	yes, err := a.confirm("Êtes-vous sûr de vouloir supprimer cet utilisateur ?")
	if err != nil || !yes {
		return err
	}

	ok, err := a.data.DeleteUser(ctx, u.ID)
	if err != nil {
		return a.fail(ctx, "Erreur lors de la suppression", err)
	}
	if ok {
		a.println("Utilisateur supprimé.")
	}
	return nil
}

func (a *App) pickUser() (models.User, error) {
	id, err := a.prompt("Identifiant de l'utilisateur")
	if err != nil {
		return models.User{}, err
	}
	u, ok := a.data.User(id)
	if !ok {
		a.println("Utilisateur introuvable.")
		return models.User{}, common.ErrorNotFound
	}
	return u, nil
}

// promptKeep shows the current value and returns nil when the answer is
// empty or unchanged.
func (a *App) promptKeep(label, cur string) (*string, error) {
	v, err := a.prompt(fmt.Sprintf("%s [%s] (vide pour garder)", label, cur))
	if err != nil || v == "" || v == cur {
		return nil, err
	}
	return &v, nil
}
