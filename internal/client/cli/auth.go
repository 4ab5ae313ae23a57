package cli

import (
	"context"
	"crypto/subtle"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and opens a session. A rejected pair is
// reported with a single generic message.
func (a *App) Login(ctx context.Context) error {
	email, err := a.prompt("Email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Mot de passe")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return a.fail(ctx, "Erreur de connexion", err)
	}
	if !ok {
		a.println("Email ou mot de passe incorrect")
		return nil
	}

	u, _ := a.auth.CurrentUser()
	a.printf("Bienvenue, %s\n", u.DisplayName())
	return nil
}

// Register collects a new account, checks the password confirmation and
// signs the account in.
func (a *App) Register(ctx context.Context) error {
	in, err := a.promptUserInput(true)
	if err != nil {
		return err
	}
	if err := a.validate.Struct(in); err != nil {
		a.println(describeValidation(err))
		return err
	}

	ok, err := a.auth.Register(ctx, in)
	if err != nil || !ok {
		return a.fail(ctx, "Erreur lors de l'inscription", err)
	}

	u, _ := a.auth.CurrentUser()
	a.printf("Compte créé, bienvenue %s\n", u.DisplayName())
	if !a.config.EnrollRegistered {
		a.println("Attention: ce compte ne pourra plus se connecter après la déconnexion.")
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.fail(ctx, "Erreur lors de la déconnexion", err)
	}
	a.println("Déconnecté.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.auth.CurrentUser()
	if !ok {
		a.println(msgLoginFirst)
		return common.ErrNotAuthenticated
	}
	a.printf("%s <%s> %s (id %s)\n", u.DisplayName(), u.Email, roleLabel(u.Role), u.ID)
	return nil
}

// promptUserInput asks for every UserInput field. With confirm set the
// password is asked twice and a mismatch aborts with ErrPasswordMismatch.
func (a *App) promptUserInput(confirm bool) (models.UserInput, error) {
	var in models.UserInput
	var err error

	if in.Email, err = a.prompt("Email"); err != nil {
		return in, err
	}
	password, err := getPassword(a.out, "Mot de passe")
	if err != nil {
		return in, err
	}
	defer common.WipeByteArray(password)

	if confirm {
		again, err := getPassword(a.out, "Confirmer le mot de passe")
		if err != nil {
			return in, err
		}
		defer common.WipeByteArray(again)
		if subtle.ConstantTimeCompare(password, again) != 1 {
			a.println("Les mots de passe ne correspondent pas")
			return in, common.ErrPasswordMismatch
		}
	}
	in.Password = string(password)

	role, err := a.prompt("Rôle (admin/user, vide pour user)")
	if err != nil {
		return in, err
	}
	in.Role = models.RoleUser
	if role != "" {
		in.Role = models.Role(role)
	}

	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Nom", &in.Nom},
		{"Post-nom", &in.PostNom},
		{"Prénom", &in.Prenom},
	} {
		if *f.dst, err = a.prompt(f.label); err != nil {
			return in, err
		}
	}
	return in, nil
}

func roleLabel(r models.Role) string {
	if r == models.RoleAdmin {
		return "Administrateur"
	}
	return "Utilisateur"
}
