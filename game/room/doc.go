// Package room matches a host with a guest before a multiplayer game starts.
//
// A host creates a room with its game parameters; the room id is the host's
// player id and becomes the game id once the host accepts a guest. At most
// one guest can be pending on a room. Rooms with no pending guest are listed
// per mode to idle clients, and every change is pushed to them.
//
// The Negotiator never touches a game. AcceptJoinRequest hands the matched
// room back to the caller, which creates the game session from it.
package room
