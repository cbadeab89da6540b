package tinkoff

// DefaultAPIURL is the production merchant API base URL.
const DefaultAPIURL = "https://securepay.tinkoff.ru/v2/"

// Credential holds the merchant identity issued by the gateway. The secret
// key participates in request signing only and is never transmitted.
// Credential is immutable; a single value may be shared by any number of
// concurrent clients.
type Credential struct {
	apiURL      string
	terminalKey string
	secretKey   string
}

// NewCredential creates a credential against the production API URL.
func NewCredential(terminalKey, secretKey string) Credential {
	return NewCredentialWithURL(DefaultAPIURL, terminalKey, secretKey)
}

// NewCredentialWithURL creates a credential against a custom API base URL,
// typically a sandbox or a test double.
func NewCredentialWithURL(apiURL, terminalKey, secretKey string) Credential {
	return Credential{
		apiURL:      apiURL,
		terminalKey: terminalKey,
		secretKey:   secretKey,
	}
}

// APIURL returns the base URL operation paths are appended to.
func (c Credential) APIURL() string {
	return c.apiURL
}

// TerminalKey returns the merchant identifier sent with every request.
func (c Credential) TerminalKey() string {
	return c.terminalKey
}

// SecretKey returns the shared signing secret.
func (c Credential) SecretKey() string {
	return c.secretKey
}
