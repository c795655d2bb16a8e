package texts

// Built-in corpora. Kept small and in-source; language packs beyond these
// would move to data files loaded at startup.

var wordCorpora = map[string][]string{
	"english": {
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "her",
		"was", "one", "our", "out", "day", "get", "has", "him", "how", "man",
		"new", "now", "old", "see", "two", "way", "who", "boy", "did", "its",
		"about", "after", "again", "below", "could", "every", "first", "found",
		"great", "house", "large", "learn", "never", "other", "place", "plant",
		"point", "right", "small", "sound", "spell", "still", "study", "their",
		"there", "these", "thing", "think", "three", "water", "where", "which",
		"world", "would", "write", "people", "through", "between", "practice",
		"keyboard", "language", "sentence", "different", "important", "together",
	},
	"spanish": {
		"que", "los", "del", "las", "por", "con", "una", "sus", "este", "como",
		"para", "pero", "ellos", "sobre", "entre", "hasta", "desde", "donde",
		"tiempo", "persona", "trabajo", "escribir", "teclado", "palabra",
		"siempre", "momento", "durante", "ejemplo", "primero", "gobierno",
	},
}

var sentenceCorpora = map[string][]string{
	"english": {
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
		"How vexingly quick daft zebras jump.",
		"Sphinx of black quartz, judge my vow.",
		"Typing well is a matter of rhythm, not of rushing.",
		"Practice a little every day and the speed will follow.",
	},
	"spanish": {
		"El veloz murciélago hindú comía feliz cardillo y kiwi.",
		"La cigüeña tocaba el saxofón detrás del palenque de paja.",
		"Escribe un poco cada día y la velocidad llegará sola.",
	},
}

var quoteCorpora = map[string][]string{
	"english": {
		"Simplicity is the ultimate sophistication.",
		"Whether you think you can or you think you can't, you're right.",
		"The only way to do great work is to love what you do.",
		"It always seems impossible until it is done.",
	},
	"spanish": {
		"Caminante, no hay camino, se hace camino al andar.",
		"La constancia vence lo que la dicha no alcanza.",
	},
}
