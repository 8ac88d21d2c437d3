package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjun-ai/authgate/internal/jwt"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

// post envía payload y falla si el status no es 2xx.
func (c *client) post(name, path string, payload any, headers map[string]string) error {
	b, _ := json.Marshal(payload)
	status, body, err := c.do(http.MethodPost, path, b, headers)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return fmt.Errorf("%s fallo: status=%d body=%s", name, status, string(body))
	}
	c.print(status, body)
	return nil
}

func main() {
	var (
		baseURL = envOr("AUTHGATE_URL", "http://localhost:8080")
		out     = envOr("AUTHGATE_OUT", "text")
		secret  = envOr("JWT_SECRET", "")
		issuer  = envOr("JWT_ISSUER", "authgate")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "authctl",
		Short: "CLI para operar authgate",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env AUTHGATE_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.OutFormat = out
	}

	// token: operaciones locales con el secreto HS256
	tokenCmd := &cobra.Command{Use: "token", Short: "Emitir o verificar access tokens localmente"}
	tokenCmd.PersistentFlags().StringVar(&secret, "secret", secret, "Secreto HS256 (env JWT_SECRET)")
	tokenCmd.PersistentFlags().StringVar(&issuer, "issuer", issuer, "Claim iss (env JWT_ISSUER)")

	newIssuer := func(ttl time.Duration) (*jwt.Issuer, error) {
		if secret == "" {
			return nil, fmt.Errorf("falta el secreto (flag --secret o env JWT_SECRET)")
		}
		return jwt.NewIssuer(secret, ttl, jwt.WithIssuer(issuer))
	}

	var (
		issueUserID   int64
		issueEmail    string
		issueNickname string
		issueTTL      time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Emitir un access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if issueUserID <= 0 {
				return fmt.Errorf("--user-id es requerido")
			}
			iss, err := newIssuer(issueTTL)
			if err != nil {
				return err
			}
			at, err := iss.Issue(issueUserID, issueEmail, issueNickname)
			if err != nil {
				return err
			}
			if out == "json" {
				b, _ := json.MarshalIndent(at, "", "  ")
				fmt.Println(string(b))
				return nil
			}
			fmt.Println(at.Token)
			return nil
		},
	}
	issueCmd.Flags().Int64Var(&issueUserID, "user-id", 0, "Id del usuario (sub)")
	issueCmd.Flags().StringVar(&issueEmail, "email", "", "Email")
	issueCmd.Flags().StringVar(&issueNickname, "nickname", "", "Nickname")
	issueCmd.Flags().DurationVar(&issueTTL, "ttl", time.Hour, "Vigencia del token")

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verificar firma y expiración (no consulta revocaciones)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, err := newIssuer(time.Hour)
			if err != nil {
				return err
			}
			claims, err := iss.Verify(args[0])
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(claims, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	tokenCmd.AddCommand(issueCmd, verifyCmd)

	// sesión: contra el servicio
	var (
		userID       int64
		refreshToken string
		accessToken  string
	)
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Rotar el refresh token (POST /oauth/refresh)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 || refreshToken == "" {
				return fmt.Errorf("--user-id y --refresh-token son requeridos")
			}
			return cl.post("refresh", "/oauth/refresh", map[string]any{"userId": userID, "refreshToken": refreshToken}, nil)
		},
	}
	refreshCmd.Flags().Int64Var(&userID, "user-id", 0, "Id del usuario")
	refreshCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Refresh token vigente")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Cerrar sesión (POST /oauth/logout)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user-id es requerido")
			}
			payload := map[string]any{"userId": userID}
			if accessToken != "" {
				payload["accessToken"] = accessToken
			}
			return cl.post("logout", "/oauth/logout", payload, nil)
		},
	}
	logoutCmd.Flags().Int64Var(&userID, "user-id", 0, "Id del usuario")
	logoutCmd.Flags().StringVar(&accessToken, "access-token", "", "Access token a revocar (opcional)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Estado de dependencias (GET /api/gateway/status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, "/api/gateway/status", nil, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			if status/100 != 2 {
				return fmt.Errorf("servicio no saludable: status=%d", status)
			}
			return nil
		},
	}

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Proveedores configurados (GET /oauth/providers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do(http.MethodGet, "/oauth/providers", nil, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("providers fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(tokenCmd, refreshCmd, logoutCmd, statusCmd, providersCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
