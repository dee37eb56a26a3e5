// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package prize

import "errors"

var (
	// ErrInvalidConfig indicates a malformed engine configuration.
	ErrInvalidConfig = errors.New("invalid prize engine configuration")

	// ErrInvalidSession indicates a session without a session id.
	ErrInvalidSession = errors.New("invalid user session")

	// ErrStoreUnavailable wraps failures of the session/win store.
	ErrStoreUnavailable = errors.New("prize store unavailable")

	// ErrCatalogUnavailable wraps failures of the prize catalog.
	ErrCatalogUnavailable = errors.New("prize catalog unavailable")

	// ErrPrizeNotFound is returned by a Catalog for an unknown prize id.
	ErrPrizeNotFound = errors.New("prize not found in catalog")
)
