// Package dictionary provides the word lists games are played with.
//
// Dictionaries are JSON files in a directory:
//
//	{
//	  "title": "Mon dictionnaire",
//	  "description": "Description de base",
//	  "words": ["aa", "aalenien", ...]
//	}
//
// The file name without its extension is the dictionary id. A small French
// dictionary is embedded under the id "default" and is used when no file
// overrides it.
//
// A dictionary's words are only kept in memory while at least one session
// uses it: Acquire loads the words on first use and Release frees them when
// the last session lets go.
package dictionary
