// Copyright (c) 2021 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package commsprotobuf

import "errors"

// Errors surfaced by Channel itself, distinct from the lower-level
// protocol and transport error kinds it wraps and re-exports.
var (
	// ErrInvalidMessage means a frame was extracted (and, if encryption
	// was enabled, successfully decrypted and authenticated) but the
	// structured-message deserializer rejected its bytes. The channel
	// remains usable; the caller decides whether to retry the read.
	ErrInvalidMessage = errors.New("commsprotobuf: message failed to deserialize")

	// ErrMessageTooLarge is returned by Write when the message's
	// reported byte length exceeds the channel's configured
	// max message size.
	ErrMessageTooLarge = errors.New("commsprotobuf: message exceeds max message size")

	// ErrInternal marks an invariant violation inside this package, as
	// opposed to bad input or a network condition.
	ErrInternal = errors.New("commsprotobuf: internal invariant violated")
)
