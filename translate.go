package rna

// ContextDefault is the translation context of UI metadata.
const ContextDefault = "*"

// Translator localizes UI names and descriptions.
type Translator interface {
	Translate(context, msgid string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(context, msgid string) string

func (f TranslatorFunc) Translate(context, msgid string) string {
	if f == nil {
		return msgid
	}
	return f(context, msgid)
}

type identityTranslator struct{}

func (identityTranslator) Translate(_, msgid string) string { return msgid }

// WithTranslator localizes the UI metadata returned by the registry.
func WithTranslator(translator Translator) Option {
	return func(cfg *registryConfig) {
		if translator == nil {
			cfg.translator = identityTranslator{}
			return
		}
		cfg.translator = translator
	}
}

func (r *Registry) translate(msgid string) string {
	if msgid == "" {
		return ""
	}
	return r.cfg.translator.Translate(ContextDefault, msgid)
}

// StructUIName returns the localized display name of s.
func (r *Registry) StructUIName(s *StructDescriptor) string {
	if s == nil {
		return ""
	}
	return r.translate(s.Name)
}

// StructUIDescription returns the localized description of s.
func (r *Registry) StructUIDescription(s *StructDescriptor) string {
	if s == nil {
		return ""
	}
	return r.translate(s.Description)
}

// PropertyUIName returns the localized display name of the property.
// Dynamic entries are shown by name, untranslated.
func (r *Registry) PropertyUIName(ref PropertyRef) string {
	if ref.dynamic != nil {
		return ref.dynamic.Name
	}
	if ref.static == nil {
		return ""
	}
	return r.translate(ref.static.Name)
}

// PropertyUIDescription returns the localized description of the
// property. Dynamic entries use the description of their UI data.
func (r *Registry) PropertyUIDescription(ref PropertyRef) string {
	if ref.dynamic != nil {
		if ui := ref.dynamic.UI(); ui != nil {
			return ui.Description
		}
		return ""
	}
	if ref.static == nil {
		return ""
	}
	return r.translate(ref.static.Description)
}

// EnumItemName returns the localized name of item.
func (r *Registry) EnumItemName(item EnumItem) string {
	return r.translate(item.Name)
}

// EnumItemDescription returns the localized description of item.
func (r *Registry) EnumItemDescription(item EnumItem) string {
	return r.translate(item.Description)
}
