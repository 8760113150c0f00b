package i18n

import (
	"fmt"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
)

// Message keys used across the credential packages.
const (
	GcmRequiredProperties    = "GcmRequiredProperties"
	GoogleAPIKeyNotSpecified = "GoogleApiKeyNotSpecified"
	GcmEndpointNotSpecified  = "GcmEndpointNotSpecified"
	InvalidGcmEndpoint       = "InvalidGcmEndpoint"
	UnsupportedPlatform      = "UnsupportedPlatform"
)

var catalog = map[string]map[string]string{
	"en": {
		GcmRequiredProperties:    "GCM credential only accepts GoogleApiKey and optional GcmEndpoint properties",
		GoogleAPIKeyNotSpecified: "GoogleApiKey is not specified in the GCM credential",
		GcmEndpointNotSpecified:  "GcmEndpoint property is present but has no value",
		InvalidGcmEndpoint:       "GcmEndpoint is not a valid GCM endpoint",
		UnsupportedPlatform:      "platform '{0}' is not supported",
	},
	"id": {
		GcmRequiredProperties:    "kredensial GCM hanya menerima properti GoogleApiKey dan GcmEndpoint (opsional)",
		GoogleAPIKeyNotSpecified: "GoogleApiKey belum diisi pada kredensial GCM",
		GcmEndpointNotSpecified:  "properti GcmEndpoint ada tetapi nilainya kosong",
		InvalidGcmEndpoint:       "GcmEndpoint bukan endpoint GCM yang valid",
		UnsupportedPlatform:      "platform '{0}' tidak didukung",
	},
}

var (
	lock   sync.RWMutex
	uni    *ut.UniversalTranslator
	active ut.Translator
)

func init() {
	fallback := en.New()
	uni = ut.New(fallback, fallback, id.New())

	for _, tag := range []string{"en", "id"} {
		trans, _ := uni.GetTranslator(tag)
		if err := register(trans, catalog[tag]); err != nil {
			panic(fmt.Errorf("i18n: register locale %s: %w", tag, err))
		}
	}

	active, _ = uni.GetTranslator("en")
}

func register(trans ut.Translator, messages map[string]string) error {
	for key, text := range messages {
		if err := trans.Add(key, text, false); err != nil {
			return err
		}
	}

	return nil
}

// SetLocale switches the active translator. Unknown locale is ignored and false is returned.
func SetLocale(tag string) bool {
	trans, found := uni.FindTranslator(tag)
	if !found {
		return false
	}

	lock.Lock()
	active = trans
	lock.Unlock()
	return true
}

// Locale returns the active locale tag.
func Locale() string {
	return Translator().Locale()
}

// Universal exposes the translator registry, used to register validator translations.
func Universal() *ut.UniversalTranslator {
	return uni
}

// Translator returns the active translator.
func Translator() ut.Translator {
	lock.RLock()
	defer lock.RUnlock()
	return active
}

// T translates key using the active locale, returning the key itself when no translation exists.
func T(key string, params ...string) string {
	text, err := Translator().T(key, params...)
	if err != nil || text == "" {
		return key
	}

	return text
}
