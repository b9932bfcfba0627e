package util

import "strings"

const GroupSuffix = "@g.us"

// GroupJID appends the group domain unless the id already carries it.
func GroupJID(groupID string) string {
	if strings.Contains(groupID, GroupSuffix) {
		return groupID
	}
	return groupID + GroupSuffix
}
