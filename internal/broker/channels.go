package broker

import "strings"

const roomChannelPrefix = "channel:"

// ChannelFor maps a room id to its broadcast channel name. Publisher and
// subscriber sides must agree on this mapping.
func ChannelFor(roomID string) string {
	return roomChannelPrefix + roomID
}

// RoomFor is the inverse of ChannelFor.
func RoomFor(channel string) (string, bool) {
	if !strings.HasPrefix(channel, roomChannelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(channel, roomChannelPrefix), true
}
