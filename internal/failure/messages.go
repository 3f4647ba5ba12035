package failure

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "failure.renderer_failure", "The game screen could not be drawn.")
	message.SetString(lang, "failure.load_failure", "The game could not be loaded.")
	message.SetString(lang, "failure.input_failure", "Your key presses are not reaching the game.")
	message.SetString(lang, "failure.audio_failure", "Game sound is unavailable.")
	message.SetString(lang, "failure.memory_failure", "The arcade ran out of memory.")
	message.SetString(lang, "failure.network_failure", "A connection problem interrupted the game.")
	message.SetString(lang, "failure.init_failure", "The game failed to start.")
	message.SetString(lang, "failure.runtime_failure", "Something went wrong while playing.")
}

// LocalizedMessage returns the player-facing message for kind in lang.
// Unknown kinds fall back to the runtime message.
func LocalizedMessage(lang language.Tag, kind Kind) string {
	parsed, ok := ParseKind(string(kind))
	if !ok {
		parsed = KindRuntime
	}
	kind = parsed
	printer := message.NewPrinter(catalogLanguage(lang))
	return printer.Sprintf(message.Key("failure."+string(kind), string(kind)))
}

// catalogLanguage picks the catalog language closest to lang, defaulting to
// English when nothing matches.
func catalogLanguage(lang language.Tag) language.Tag {
	supported := message.DefaultCatalog.Languages()
	if len(supported) == 0 {
		return language.English
	}
	_, idx, confidence := language.NewMatcher(supported).Match(lang)
	if confidence == language.No {
		return language.English
	}
	return supported[idx]
}
