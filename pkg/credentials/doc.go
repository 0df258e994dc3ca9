// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package credentials supplies authentication for remote operations.
//
// Credentials are acquired on demand: first from the git credential helpers
// configured for the repository, then from an askpass program, and finally
// by prompting on the terminal. The store keeps the result between retries;
// its Tried flag distinguishes "never asked" from "asked and rejected", and
// clearing the store overwrites the secret bytes it held.
package credentials
