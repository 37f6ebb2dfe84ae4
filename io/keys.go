package io

// Keys is a scripted keyboard, fed from a fixed byte sequence.
// Useful for tests and for running programs non-interactively.
type Keys struct {
	Data []byte
}

var _ Keyboard = (*Keys)(nil)

// Type appends text to the pending key sequence.
func (keys *Keys) Type(text string) {
	keys.Data = append(keys.Data, []byte(text)...)
}

// Poll consumes and returns the next key, if any.
func (keys *Keys) Poll() (key byte, ok bool) {
	if len(keys.Data) == 0 {
		return
	}

	key = keys.Data[0]
	keys.Data = keys.Data[1:]
	ok = true

	return
}

// ReadKey consumes and returns the next key.
// Returns ErrKeysEmpty when the script has run out.
func (keys *Keys) ReadKey() (key byte, err error) {
	key, ok := keys.Poll()
	if !ok {
		err = ErrKeysEmpty
	}

	return
}
