package storage

// deepMerge combines incoming into existing. Overlapping object fields
// merge recursively with the incoming side winning at the leaves. Any
// non-object pairing, arrays included, is replaced by the incoming
// value rather than combined.
func deepMerge(existing, incoming any) any {
	existingObj, eOk := existing.(map[string]any)
	incomingObj, iOk := incoming.(map[string]any)
	if !eOk || !iOk {
		return incoming
	}

	merged := make(map[string]any, len(existingObj)+len(incomingObj))
	for k, v := range existingObj {
		merged[k] = v
	}
	for k, v := range incomingObj {
		if prev, ok := merged[k]; ok {
			merged[k] = deepMerge(prev, v)
		} else {
			merged[k] = v
		}
	}
	return merged
}
