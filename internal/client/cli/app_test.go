package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/config"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/plate"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/services"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/snapshot"
	"github.com/dmitrijs2005/plaquekeeper/internal/common"
	"github.com/dmitrijs2005/plaquekeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

type testApp struct {
	*App
	out  *bytes.Buffer
	snap *snapshot.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.ExportDir = filepath.Join(t.TempDir(), "exports")
	c.QRSize = 64

	snap := snapshot.NewMemoryStore()
	app, err := newApp(context.Background(), c, logging.NewNopLogger(), snap)
	require.NoError(t, err)

	var buf bytes.Buffer
	app.out = &buf
	app.reader = bufio.NewReader(strings.NewReader(""))
	return &testApp{App: app, out: &buf, snap: snap}
}

// feed queues the answers read by the prompts.
func (ta *testApp) feed(lines ...string) {
	ta.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func (ta *testApp) loginAs(t *testing.T, email, password string) {
	t.Helper()
	ok, err := ta.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	require.True(t, ok)
}

// stubPasswords makes getPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		if len(answers) == 0 {
			return nil, io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

type brokenEncoder struct{}

func (brokenEncoder) Encode(context.Context, string) (string, error) {
	return "", errors.New("encoder down")
}

// plaqueAnswers are the prompt answers after the numero, in prompt order.
var plaqueAnswers = []string{
	"KASONGO", "ILUNGA", "Marie", "Lukaya", "Madimba", "Secteur 1", "Ngeba",
	"Kongo-Central", "", "12 av. du Commerce", "+243810000000", "",
}

// ------------ auth ------------

func TestApp_Login(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("admin@transport.cd")
	stubPasswords(t, "admin123")

	require.NoError(t, ta.Login(context.Background()))

	assert.True(t, ta.isAdmin())
	assert.Contains(t, ta.out.String(), "Bienvenue, ADMIN SYSTEM Administrator")
}

func TestApp_Login_Rejected(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("admin@transport.cd")
	stubPasswords(t, "wrong")

	require.NoError(t, ta.Login(context.Background()))

	assert.False(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Email ou mot de passe incorrect")
}

func TestApp_Register(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("agent@transport.cd", "", "NGOY", "KALALA", "Paul")
	stubPasswords(t, "pw", "pw")

	require.NoError(t, ta.Register(context.Background()))

	u, ok := ta.auth.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Equal(t, "NGOY KALALA Paul", u.DisplayName())
	assert.Contains(t, ta.out.String(), "ne pourra plus se connecter")
}

func TestApp_Register_PasswordMismatch(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("agent@transport.cd")
	stubPasswords(t, "pw", "other")

	err := ta.Register(context.Background())

	assert.ErrorIs(t, err, common.ErrPasswordMismatch)
	assert.False(t, ta.isLoggedIn())
	assert.Contains(t, ta.out.String(), "Les mots de passe ne correspondent pas")
}

func TestApp_Register_Invalid(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("not-an-email", "boss", "", "", "")
	stubPasswords(t, "pw", "pw")

	err := ta.Register(context.Background())

	require.Error(t, err)
	assert.False(t, ta.isLoggedIn())
	out := ta.out.String()
	assert.Contains(t, out, "Email: adresse email invalide")
	assert.Contains(t, out, "Role: valeur attendue parmi: admin user")
	assert.Contains(t, out, "Nom: champ obligatoire")
}

func TestApp_LogoutAndWhoAmI(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")

	require.NoError(t, ta.WhoAmI(context.Background()))
	assert.Contains(t, ta.out.String(), "UTILISATEUR TEST Standard <user@transport.cd> Utilisateur")

	require.NoError(t, ta.Logout(context.Background()))
	assert.False(t, ta.isLoggedIn())
	assert.ErrorIs(t, ta.WhoAmI(context.Background()), common.ErrNotAuthenticated)
}

// ------------ users ------------

func TestApp_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)
	ta.loginAs(t, "admin@transport.cd", "admin123")

	ta.feed("agent@transport.cd", "admin", "NGOY", "KALALA", "Paul")
	stubPasswords(t, "secret")
	require.NoError(t, ta.AddUser(ctx))
	require.Len(t, ta.data.Users(), 1)
	u := ta.data.Users()[0]
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "secret", u.Password)

	// Only the role and the first name change; the empty password keeps the old one.
	ta.feed(u.ID, "", "", "", "Pierre", "user")
	stubPasswords(t, "")
	require.NoError(t, ta.EditUser(ctx))
	got, _ := ta.data.User(u.ID)
	assert.Equal(t, "Pierre", got.Prenom)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Equal(t, "secret", got.Password)

	ta.out.Reset()
	require.NoError(t, ta.ListUsers(ctx))
	assert.Contains(t, ta.out.String(), "NGOY KALALA Pierre")

	ta.feed(u.ID, "n")
	require.NoError(t, ta.DeleteUser(ctx))
	assert.Len(t, ta.data.Users(), 1, "declined confirmation keeps the user")

	ta.feed(u.ID, "o")
	require.NoError(t, ta.DeleteUser(ctx))
	assert.Empty(t, ta.data.Users())
}

func TestApp_EditUser_UnknownID(t *testing.T) {
	ta := newTestApp(t)
	ta.feed("missing")

	err := ta.EditUser(context.Background())

	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, ta.out.String(), "Utilisateur introuvable.")
}

// ------------ plaques ------------

func TestApp_AddPlaque_GeneratesNumeroAndQR(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	ta.feed(append([]string{""}, plaqueAnswers...)...)

	require.NoError(t, ta.AddPlaque(context.Background()))

	plaques := ta.data.Plaques()
	require.Len(t, plaques, 1)
	p := plaques[0]
	assert.True(t, plate.Valid(p.Numero), p.Numero)
	assert.Equal(t, "Congolaise", p.Nationalite)
	assert.Equal(t, "2", p.CreatedBy)
	assert.True(t, strings.HasPrefix(p.QRCode, "data:image/png;base64,"))
	assert.Contains(t, ta.out.String(), "Numéro généré: "+p.Numero)
}

func TestApp_AddPlaque_RejectsBadNumero(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	ta.feed(append([]string{"12/26/A"}, plaqueAnswers...)...)

	require.Error(t, ta.AddPlaque(context.Background()))

	assert.Empty(t, ta.data.Plaques())
	assert.Contains(t, ta.out.String(), "format attendu NNNN/AA/L")
}

func TestApp_AddPlaque_QRFailure(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		stored bool
	}{
		{"keep without image", "o", true},
		{"give up", "n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.loginAs(t, "user@transport.cd", "user123")
			data, err := services.NewDataStore(context.Background(), snapshot.NewMemoryStore(), brokenEncoder{})
			require.NoError(t, err)
			ta.data = data
			ta.feed(append(append([]string{"0042/26/K"}, plaqueAnswers...), tt.answer)...)

			err = ta.AddPlaque(context.Background())

			assert.Contains(t, ta.out.String(), msgQRFailed)
			if tt.stored {
				require.NoError(t, err)
				require.Len(t, ta.data.Plaques(), 1)
				assert.Empty(t, ta.data.Plaques()[0].QRCode)
			} else {
				assert.ErrorIs(t, err, common.ErrQREncode)
				assert.Empty(t, ta.data.Plaques())
			}
		})
	}
}

func addPlaque(t *testing.T, ta *testApp, numero string) models.Plaque {
	t.Helper()
	u, _ := ta.auth.CurrentUser()
	out, err := ta.data.AddPlaque(context.Background(), models.PlaqueInput{
		Numero: numero, Nom: "KASONGO", PostNom: "ILUNGA", Prenom: "Marie",
		Province: "Kinshasa", Nationalite: "Congolaise", CreatedBy: u.ID,
	}, services.QRRequired)
	require.NoError(t, err)
	return out.Plaque
}

func TestApp_EditPlaque_NewNumeroNewQR(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	p := addPlaque(t, ta, "0001/26/A")

	answers := make([]string, len(plaqueFields))
	answers[7] = "Kongo-Central"
	ta.feed(append([]string{p.ID, "0002/26/B"}, answers...)...)

	require.NoError(t, ta.EditPlaque(context.Background()))

	got, _ := ta.data.Plaque(p.ID)
	assert.Equal(t, "0002/26/B", got.Numero)
	assert.Equal(t, "Kongo-Central", got.Province)
	assert.NotEqual(t, p.QRCode, got.QRCode)
	assert.Equal(t, p.Nom, got.Nom)
	assert.Contains(t, ta.out.String(), "Plaque modifiée.")
}

func TestApp_EditPlaque_NoChange(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	p := addPlaque(t, ta, "0001/26/A")
	ta.feed(append([]string{p.Numero, ""}, make([]string, len(plaqueFields))...)...)

	require.NoError(t, ta.EditPlaque(context.Background()))

	got, _ := ta.data.Plaque(p.ID)
	assert.Equal(t, p, got)
	assert.Contains(t, ta.out.String(), "Aucune modification.")
}

func TestApp_DeletePlaque(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	p := addPlaque(t, ta, "0001/26/A")

	ta.feed(p.Numero, "oui")
	require.NoError(t, ta.DeletePlaque(context.Background()))

	assert.Empty(t, ta.data.Plaques())
}

func TestApp_ShowPlaque(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "admin@transport.cd", "admin123")
	p := addPlaque(t, ta, "0042/26/K")
	ta.feed(p.ID)

	require.NoError(t, ta.ShowPlaque(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "0042/26/K")
	assert.Contains(t, out, "KASONGO ILUNGA Marie")
	assert.Contains(t, out, "ADMIN SYSTEM Administrator")
	assert.Contains(t, out, "PNG, ")
}

func TestApp_ExportQR(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	p := addPlaque(t, ta, "0042/26/K")
	ta.feed(p.ID)

	require.NoError(t, ta.ExportQR(context.Background()))

	path := filepath.Join(ta.config.ExportDir, "plaque-0042-26-K.png")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ta.metrics.QRExports.WithLabelValues("file", "success")))
}

func TestApp_GeneratePlate(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.GeneratePlate(context.Background()))

	assert.True(t, plate.Valid(strings.TrimSpace(ta.out.String())))
}

// ------------ dashboard & settings ------------

func TestApp_StatsAndDarkMode(t *testing.T) {
	ctx := context.Background()
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")
	addPlaque(t, ta, "0042/26/K")

	require.NoError(t, ta.Stats(ctx))
	assert.Contains(t, ta.out.String(), "Plaques ce mois:     1")
	assert.Contains(t, ta.out.String(), "0042/26/K")

	require.NoError(t, ta.ToggleDarkMode(ctx))
	assert.True(t, ta.data.DarkMode())
	assert.Contains(t, ta.getStatus(), ansiDark)
	assert.Contains(t, ta.getStatus(), "user@transport.cd user")
}

func TestApp_Metrics(t *testing.T) {
	ta := newTestApp(t)
	ta.loginAs(t, "user@transport.cd", "user123")

	require.NoError(t, ta.Metrics(context.Background()))

	assert.Contains(t, ta.out.String(), `plaques_auth_login_attempts_total{status="success"} 1`)
}

// ------------ whole console ------------

func TestApp_Run_Session(t *testing.T) {
	capturePrintln(t)
	ta := newTestApp(t)
	stubPasswords(t, "user123")
	ta.feed("plaques", "login", "user@transport.cd", "users", "plate", "logout", "exit")

	ta.Run(context.Background())

	out := ta.out.String()
	assert.Contains(t, out, "Bienvenue, UTILISATEUR TEST Standard")
	assert.Contains(t, out, "Déconnecté.")
	assert.False(t, ta.isLoggedIn())
	assert.Equal(t, 2, ta.snap.Saves(snapshot.AuthKey))
}
