package i18n

// frenchMessages contains all French translations.
var frenchMessages = map[string]string{
	// Error messages
	"error.generic":       "Quelque chose s'est mal passé. Réessaie.",
	"error.resolve":       "Impossible de tirer quoi que ce soit de jouable de ce lien.",
	"error.not_in_voice":  "Rejoins d'abord un salon vocal, puis redemande.",
	"error.playlist_full": "La file est pleine (%d morceaux). Réessaie quand un morceau sera passé.",
	"error.play_failed":   "Impossible de jouer %s, on passe au suivant.",

	// Usage prompts
	"prompt.play_usage": "Utilisation : %s <url>",

	// Formatting helpers
	"format.duration_unknown": "inconnue",
	"format.queue_item":       "%d. %s",
	"format.help_line":        "%s - %s",

	// Success messages
	"success.song_added":   "« %s » ajouté à la file (durée : %s).",
	"success.stopped":      "Lecture arrêtée et file vidée.",
	"success.disconnected": "J'ai quitté le salon vocal.",
	"success.skipped":      "On passe %s.",

	// Bot status messages
	"bot.now_playing":     "En cours : %s.",
	"bot.nothing_to_skip": "Rien à passer...",
	"bot.queue_empty":     "La file est vide.",
	"bot.queue_current":   "En cours : %s",
	"bot.queue_next":      "À suivre :",
	"bot.not_connected":   "Je ne suis dans aucun salon vocal.",
	"bot.help_header":     "Commandes disponibles :",

	// Command descriptions
	"help.play":       "ajoute l'audio d'une vidéo à la file",
	"help.next":       "passe le morceau en cours",
	"help.list":       "affiche le morceau en cours et la file",
	"help.stop":       "arrête la lecture et vide la file",
	"help.disconnect": "arrête et quitte le salon vocal",
	"help.help":       "affiche ce message",
}
