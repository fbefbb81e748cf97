package handlers

import (
	"fmt"
	"slices"
	"time"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/provider"
)

type fieldDTO struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Secret bool   `json:"secret"`
}

type providerTypeDTO struct {
	Kind         string                 `json:"kind"`
	DisplayName  string                 `json:"display_name"`
	Description  string                 `json:"description"`
	ProviderType string                 `json:"provider_type"`
	Domain       string                 `json:"domain"`
	BuiltIn      bool                   `json:"built_in"`
	Configured   bool                   `json:"configured"`
	Fields       []fieldDTO             `json:"fields"`
	ConfigSchema map[string]interface{} `json:"config_schema,omitempty"`
}

type providerConfigDTO struct {
	ID                int64             `json:"id"`
	PHID              string            `json:"phid"`
	ProviderClass     string            `json:"provider_class"`
	ProviderName      string            `json:"provider_name,omitempty"`
	ProviderType      string            `json:"provider_type"`
	ProviderDomain    string            `json:"provider_domain"`
	Enabled           bool              `json:"enabled"`
	AllowLogin        bool              `json:"allow_login"`
	AllowRegistration bool              `json:"allow_registration"`
	AllowLink         bool              `json:"allow_link"`
	AllowUnlink       bool              `json:"allow_unlink"`
	Properties        map[string]string `json:"properties"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type transactionDTO struct {
	ID            string    `json:"id"`
	ConfigID      int64     `json:"config_id"`
	Kind          string    `json:"kind"`
	MetadataKey   string    `json:"metadata_key"`
	Title         string    `json:"title"`
	OldValue      string    `json:"old_value"`
	NewValue      string    `json:"new_value"`
	Actor         string    `json:"actor"`
	ContentSource string    `json:"content_source"`
	CreatedAt     time.Time `json:"created_at"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func toProviderTypeDTO(desc provider.TypeDescriptor, configured bool) providerTypeDTO {
	fields := make([]fieldDTO, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		fields = append(fields, fieldDTO{Key: f.Key, Label: f.Label, Secret: f.Secret})
	}
	return providerTypeDTO{
		Kind:         desc.Kind,
		DisplayName:  desc.DisplayName,
		Description:  desc.Description,
		ProviderType: desc.ProviderType,
		Domain:       desc.Domain,
		BuiltIn:      desc.BuiltIn,
		Configured:   configured,
		Fields:       fields,
		ConfigSchema: desc.ConfigSchema,
	}
}

// toProviderConfigDTO converts a config; secret properties are redacted when p is known.
func toProviderConfigDTO(cfg *domain.ProviderConfig, p provider.Provider) providerConfigDTO {
	var secretKeys []string
	name := ""
	if p != nil {
		secretKeys = p.SecretKeys()
		name = p.ProviderName()
	}
	props := make(map[string]string, len(cfg.Properties))
	for k, v := range cfg.Properties {
		if v != "" && (p == nil || slices.Contains(secretKeys, k)) {
			v = domain.RedactedValue
		}
		props[k] = v
	}
	return providerConfigDTO{
		ID:                cfg.ID,
		PHID:              cfg.PHID,
		ProviderClass:     cfg.ProviderClass,
		ProviderName:      name,
		ProviderType:      cfg.ProviderType,
		ProviderDomain:    cfg.ProviderDomain,
		Enabled:           cfg.Enabled,
		AllowLogin:        cfg.AllowLogin,
		AllowRegistration: cfg.AllowRegistration,
		AllowLink:         cfg.AllowLink,
		AllowUnlink:       cfg.AllowUnlink,
		Properties:        props,
		CreatedAt:         cfg.CreatedAt,
		UpdatedAt:         cfg.UpdatedAt,
	}
}

func toTransactionDTO(tx domain.Transaction, desc provider.TypeDescriptor) transactionDTO {
	return transactionDTO{
		ID:            tx.ID,
		ConfigID:      tx.ConfigID,
		Kind:          string(tx.Kind),
		MetadataKey:   tx.MetadataKey,
		Title:         transactionTitle(tx, desc),
		OldValue:      tx.OldValue,
		NewValue:      tx.NewValue,
		Actor:         tx.Actor,
		ContentSource: tx.ContentSource,
		CreatedAt:     tx.CreatedAt,
	}
}

// transactionTitle renders the human-readable history line of a transaction.
func transactionTitle(tx domain.Transaction, desc provider.TypeDescriptor) string {
	on := tx.NewValue == "1"
	switch tx.Kind {
	case domain.KindEnable:
		if on {
			return fmt.Sprintf("%s enabled this provider.", tx.Actor)
		}
		return fmt.Sprintf("%s disabled this provider.", tx.Actor)
	case domain.KindAllowRegistration:
		if on {
			return fmt.Sprintf("%s enabled registration.", tx.Actor)
		}
		return fmt.Sprintf("%s disabled registration.", tx.Actor)
	case domain.KindAllowLink:
		if on {
			return fmt.Sprintf("%s enabled account linking.", tx.Actor)
		}
		return fmt.Sprintf("%s disabled account linking.", tx.Actor)
	case domain.KindAllowUnlink:
		if on {
			return fmt.Sprintf("%s enabled account unlinking.", tx.Actor)
		}
		return fmt.Sprintf("%s disabled account unlinking.", tx.Actor)
	case domain.KindSetProperty:
		label := desc.Label(tx.MetadataKey)
		if tx.OldValue == "" {
			return fmt.Sprintf("%s set %s.", tx.Actor, label)
		}
		return fmt.Sprintf("%s changed %s.", tx.Actor, label)
	default:
		return fmt.Sprintf("%s edited this provider.", tx.Actor)
	}
}

func statusTag(enabled bool) (label, tone string) {
	if enabled {
		return "Enabled", "green"
	}
	return "Disabled", "red"
}
