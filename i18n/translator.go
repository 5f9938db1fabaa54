package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "identity").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "schema_violation":
			return "記述子の形が不正です"
		case "semantic_conflict":
			return "フィールドの組み合わせが矛盾しています"
		case "identifier_collision_unresolved":
			return "識別子の衝突を解決できません"
		case "storage_size_mismatch":
			return "割当済み領域とサイズが一致しません"
		case "storage_overlap":
			return "EEPROM 領域が重複しています"
		case "storage_exhausted":
			return "EEPROM 空き容量がありません"
		case "ledger_corrupt":
			return "マッピングファイルが壊れています"
		}
	default: // "en"
		switch code {
		case "schema_violation":
			return "descriptor shape violation"
		case "semantic_conflict":
			return "conflicting field combination"
		case "identifier_collision_unresolved":
			return "identifier collision could not be resolved"
		case "storage_size_mismatch":
			return "stored slot size differs from computed size"
		case "storage_overlap":
			return "overlapping EEPROM slots"
		case "storage_exhausted":
			return "no space left on EEPROM"
		case "ledger_corrupt":
			return "allocation ledger is corrupt"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
