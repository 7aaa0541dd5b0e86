package common

// AppName is used as the log source and the default local database name.
const AppName = "dailygrace"

// MaxCustomCategories caps the number of user-created categories.
const MaxCustomCategories = 10
