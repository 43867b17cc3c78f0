// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package store

const (
	upsertUser = `INSERT INTO users (user_id, username, first_name, last_name, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET username = EXCLUDED.username,
	    first_name = EXCLUDED.first_name,
	    last_name = EXCLUDED.last_name,
	    updated_at = NOW();`

	upsertSheetRef = `INSERT INTO user_sheets (user_id, spreadsheet_id, title, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET spreadsheet_id = EXCLUDED.spreadsheet_id,
	    title = EXCLUDED.title,
	    updated_at = NOW();`

	getSheetRef = `SELECT user_id, spreadsheet_id, title, updated_at
	FROM user_sheets
	WHERE user_id = $1;`

	deleteSheetRef = `DELETE FROM user_sheets WHERE user_id = $1;`

	upsertCredential = `INSERT INTO credentials (user_id, ciphertext, expiry, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET ciphertext = EXCLUDED.ciphertext,
	    expiry = EXCLUDED.expiry,
	    updated_at = NOW();`

	getCredential = `SELECT user_id, ciphertext, expiry, created_at, updated_at
	FROM credentials
	WHERE user_id = $1;`

	deleteCredential = `DELETE FROM credentials WHERE user_id = $1;`

	upsertCategorySet = `INSERT INTO category_overrides (user_id, category_set, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET category_set = EXCLUDED.category_set,
	    updated_at = NOW();`

	getCategorySet = `SELECT category_set
	FROM category_overrides
	WHERE user_id = $1;`

	deleteCategorySet = `DELETE FROM category_overrides WHERE user_id = $1;`

	deletePendingAuthRequests = `DELETE FROM auth_requests WHERE user_id = $1;`

	insertAuthRequest = `INSERT INTO auth_requests (token, user_id, consumed, created_at, expires_at)
	VALUES ($1, $2, FALSE, $3, $4);`

	// Consumed-exactly-once: the WHERE clause makes the second consume of the
	// same token (or a consume after expiry) match zero rows.
	consumeAuthRequest = `UPDATE auth_requests
	SET consumed = TRUE
	WHERE token = $1 AND consumed = FALSE AND expires_at > $2
	RETURNING token, user_id, consumed, created_at, expires_at;`
)
