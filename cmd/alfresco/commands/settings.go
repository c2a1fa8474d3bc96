package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/storage"
)

// Configuration keys.
const (
	KeyHostEcm           = "host_ecm"
	KeyHostBpm           = "host_bpm"
	KeyAuthType          = "auth_type"
	KeyProvider          = "provider"
	KeyContextRoot       = "context_root"
	KeyContextRootBpm    = "context_root_bpm"
	KeyDisableCsrf       = "disable_csrf"
	KeyDomainPrefix      = "domain_prefix"
	KeyOAuth2Host        = "oauth2_host"
	KeyOAuth2ClientID    = "oauth2_client_id"
	KeyOAuth2Secret      = "oauth2_secret"
	KeyOAuth2Scope       = "oauth2_scope"
	KeyOAuth2Implicit    = "oauth2_implicit_flow"
	KeyOAuth2RedirectURI = "oauth2_redirect_uri"
	KeyOAuth2LogoutURI   = "oauth2_redirect_uri_logout"
	KeyStorage           = "storage"
	KeyCredentialsFile   = "credentials_file"
	KeyRedisAddr         = "redis_addr"
	KeyNATSURL           = "nats_url"
	KeyNATSBucket        = "nats_bucket"
	KeyUsername          = "username"
)

const credentialsFileName = "credentials.yml"

// setting describes one configuration key.
type setting struct {
	Key         string
	Description string
	Default     any
	Boolean     bool
	Secret      bool
}

var settings = []setting{
	{Key: KeyHostEcm, Description: "content repository URL", Default: constants.DefaultHostEcm},
	{Key: KeyHostBpm, Description: "process engine URL", Default: constants.DefaultHostBpm},
	{Key: KeyAuthType, Description: "BASIC or OAUTH", Default: string(alfresco.AuthTypeBasic)},
	{Key: KeyProvider, Description: "ECM, BPM or ALL", Default: string(alfresco.ProviderECM)},
	{Key: KeyContextRoot, Description: "content repository context root", Default: constants.DefaultContextRoot},
	{Key: KeyContextRootBpm, Description: "process engine context root", Default: constants.DefaultContextRootBpm},
	{Key: KeyDisableCsrf, Description: "do not send CSRF tokens to the process engine", Default: false, Boolean: true},
	{Key: KeyDomainPrefix, Description: "credential store key prefix", Default: ""},
	{Key: KeyOAuth2Host, Description: "identity provider realm URL", Default: ""},
	{Key: KeyOAuth2ClientID, Description: "OAuth2 client id", Default: ""},
	{Key: KeyOAuth2Secret, Description: "OAuth2 client secret (environment only)", Default: "", Secret: true},
	{Key: KeyOAuth2Scope, Description: "OAuth2 scopes", Default: "openid"},
	{Key: KeyOAuth2Implicit, Description: "use the implicit grant", Default: false, Boolean: true},
	{Key: KeyOAuth2RedirectURI, Description: "implicit grant redirect URI", Default: ""},
	{Key: KeyOAuth2LogoutURI, Description: "post logout redirect URI", Default: ""},
	{Key: KeyStorage, Description: "credential store: file, memory, redis or nats", Default: string(storage.TypeFile)},
	{Key: KeyCredentialsFile, Description: "credential file (default <config-dir>/credentials.yml)", Default: ""},
	{Key: KeyRedisAddr, Description: "comma separated Redis addresses", Default: ""},
	{Key: KeyNATSURL, Description: "NATS server URL", Default: ""},
	{Key: KeyNATSBucket, Description: "NATS key-value bucket", Default: "alfresco"},
	{Key: KeyUsername, Description: "default login username", Default: ""},
}

func lookupSetting(key string) (setting, bool) {
	for _, candidate := range settings {
		if candidate.Key == key {
			return candidate, true
		}
	}

	return setting{}, false
}

// sessionConfig derives the session configuration from the settings.
func (e *environment) sessionConfig() *alfresco.Config {
	v := e.viper

	config := &alfresco.Config{
		HostEcm:        v.GetString(KeyHostEcm),
		HostBpm:        v.GetString(KeyHostBpm),
		AuthType:       alfresco.AuthType(v.GetString(KeyAuthType)),
		Provider:       alfresco.Provider(v.GetString(KeyProvider)),
		ContextRoot:    v.GetString(KeyContextRoot),
		ContextRootBpm: v.GetString(KeyContextRootBpm),
		DisableCsrf:    v.GetBool(KeyDisableCsrf),
		DomainPrefix:   v.GetString(KeyDomainPrefix),
	}

	if host := v.GetString(KeyOAuth2Host); host != "" {
		config.OAuth2 = &alfresco.OAuth2Config{
			Host:              host,
			ClientID:          v.GetString(KeyOAuth2ClientID),
			Secret:            v.GetString(KeyOAuth2Secret),
			Scope:             v.GetString(KeyOAuth2Scope),
			ImplicitFlow:      v.GetBool(KeyOAuth2Implicit),
			RedirectURI:       v.GetString(KeyOAuth2RedirectURI),
			RedirectURILogout: v.GetString(KeyOAuth2LogoutURI),
		}
	}

	return config
}

// storeConfig derives the credential store configuration from the settings.
func (e *environment) storeConfig() (*storage.Config, error) {
	v := e.viper
	kind := storage.Type(strings.ToLower(v.GetString(KeyStorage)))

	config := &storage.Config{Type: kind}

	switch kind {
	case storage.TypeMemory:
	case storage.TypeFile, "":
		config.Type = storage.TypeFile

		config.FilePath = v.GetString(KeyCredentialsFile)
		if config.FilePath == "" {
			dir, err := e.ensureConfigDir()
			if err != nil {
				return nil, err
			}

			config.FilePath = filepath.Join(dir, credentialsFileName)
		}
	case storage.TypeRedis:
		config.Redis = &storage.RedisConfig{Addrs: splitList(v.GetString(KeyRedisAddr))}
	case storage.TypeNATS:
		config.NATS = &storage.NATSKVConfig{
			URL:    v.GetString(KeyNATSURL),
			Bucket: v.GetString(KeyNATSBucket),
		}
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrInvalidStorageType, kind)
	}

	return config, nil
}

// saveSetting writes key to the configuration file, keeping the other keys.
func (e *environment) saveSetting(key, value string) error {
	definition, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	if definition.Secret {
		return fmt.Errorf("%w: set ALFRESCO_%s instead", constants.ErrSecretKeysNotAllowed, strings.ToUpper(key))
	}

	var stored any = value

	if definition.Boolean {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s", constants.ErrInvalidBoolean, value)
		}

		stored = parsed
	}

	dir, err := e.ensureConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, configFileName)

	values, err := readSettingsFile(path)
	if err != nil {
		return err
	}

	values[key] = stored

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}

	e.viper.Set(key, stored)

	return nil
}

func readSettingsFile(path string) (map[string]any, error) {
	values := map[string]any{}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the user's configuration directory
	if os.IsNotExist(err) {
		return values, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if values == nil {
		values = map[string]any{}
	}

	return values, nil
}

// effectiveSettings returns every key with its current value. Secrets are
// masked.
func (e *environment) effectiveSettings() map[string]string {
	result := make(map[string]string, len(settings))

	for _, definition := range settings {
		value := e.viper.GetString(definition.Key)
		if definition.Secret && value != "" {
			value = constants.MaskedSecret
		}

		result[definition.Key] = value
	}

	return result
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
