package packet

// TopicMatches reports whether an inbound topic name matches a subscription
// filter under MQTT 3.1.1 wildcard rules ('+' matches one level, '#' matches
// the remainder when it is the filter's final character). It assumes the
// filter is well-formed ('#' only at the end, '+'/'#' only adjacent to '/'
// separators) and does not validate that.
//
// Ported from the original C implementation's MQTTisTopicMatched, walking
// filter and name byte-by-byte instead of through C string pointers.
func TopicMatches(filter, name string) bool {
	fi, ni := 0, 0
	for fi < len(filter) && ni < len(name) {
		if name[ni] == '/' && filter[fi] != '/' {
			break
		}
		if filter[fi] != '+' && filter[fi] != '#' && filter[fi] != name[ni] {
			break
		}
		if filter[fi] == '+' {
			// Skip ahead within this single level, stopping one short of
			// the next separator (or the end) — the trailing fi++/ni++
			// below advances past it.
			for ni+1 < len(name) && name[ni+1] != '/' {
				ni++
			}
		} else if filter[fi] == '#' {
			ni = len(name) - 1
		}
		fi++
		ni++
	}
	return ni == len(name) && fi == len(filter)
}
