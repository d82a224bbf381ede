package users

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vibely/src/core/database"
	"vibely/src/core/helpers"
	"vibely/src/core/models"
)

// ProfileView is the full profile payload, only served when the viewer
// passes the visibility gate.
type ProfileView struct {
	models.User
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
	HasRequested   bool  `json:"has_requested"`
}

// GetProfile returns a profile looked up by username. Private profiles
// answer with the dedicated private payload unless the viewer is the owner
// or a follower.
func GetProfile(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var user models.User
	if err := db.First(&user, "username = ?", c.Params("username")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helpers.HandleServiceError(c, "User not found", helpers.ErrNotFound)
		}
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}

	var followingCount, edge, requested int64
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, user.ID).
		Count(&edge).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch follow state", err)
	}
	isOwnProfile := user.ID == actorID
	isFollowing := edge > 0

	if user.IsPrivate && !isOwnProfile && !isFollowing {
		return helpers.HandleServiceError(c, "This profile is private", helpers.ErrPrivateProfile)
	}

	if err := db.Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ?", actorID, user.ID).
		Count(&requested).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch request state", err)
	}

	profile := ProfileView{User: user, IsFollowing: isFollowing, HasRequested: requested > 0}
	if err := db.Model(&models.Post{}).
		Where("user_id = ? AND is_archived = ?", user.ID, false).
		Count(&profile.PostsCount).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to count posts", err)
	}
	if err := db.Model(&models.Follow{}).Where("followee_id = ?", user.ID).
		Count(&profile.FollowersCount).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to count followers", err)
	}
	if err := db.Model(&models.Follow{}).Where("follower_id = ?", user.ID).
		Count(&followingCount).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to count following", err)
	}
	profile.FollowingCount = followingCount

	return helpers.HandleSuccess(c, fiber.StatusOK, "User profile retrieved successfully", profile)
}

// SearchUsers matches usernames and display names, excluding the searcher.
func SearchUsers(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Search query must be at least 2 characters", nil)
	}

	pattern := "%" + strings.ToLower(q) + "%"
	var users []models.UserSummary
	if err := db.Model(&models.UserSummary{}).
		Where("(LOWER(username) LIKE ? OR LOWER(name) LIKE ?) AND id <> ?", pattern, pattern, actorID).
		Limit(10).
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to search users", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Users retrieved", users)
}

// GetSuggestedUsers proposes accounts the viewer does not follow yet,
// most-followed first.
func GetSuggestedUsers(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	followed := db.Model(&models.Follow{}).
		Select("followee_id").
		Where("follower_id = ?", actorID)

	var users []models.UserSummary
	if err := db.Model(&models.UserSummary{}).
		Select("users.id, users.username, users.name, users.profile_pic").
		Joins("LEFT JOIN follows ON follows.followee_id = users.id").
		Where("users.id <> ? AND users.id NOT IN (?)", actorID, followed).
		Group("users.id, users.username, users.name, users.profile_pic").
		Order("COUNT(follows.follower_id) DESC").
		Limit(5).
		Find(&users).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to fetch suggestions", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Suggested users retrieved", users)
}

type updateProfileInput struct {
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Bio       *string `json:"bio"`
	Gender    string  `json:"gender"`
	Email     string  `json:"email" validate:"omitempty,email"`
	IsPrivate *bool   `json:"is_private"`
}

func UpdateProfile(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var input updateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}

	updates := map[string]interface{}{}
	if input.Username != "" {
		var taken int64
		if err := db.Model(&models.User{}).
			Where("username = ? AND id <> ?", input.Username, actorID).
			Count(&taken).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to check username", err)
		}
		if taken > 0 {
			return helpers.HandleError(c, fiber.StatusBadRequest, "Username is already taken", nil)
		}
		updates["username"] = input.Username
	}
	if input.Email != "" {
		var taken int64
		if err := db.Model(&models.User{}).
			Where("email = ? AND id <> ?", input.Email, actorID).
			Count(&taken).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to check email", err)
		}
		if taken > 0 {
			return helpers.HandleError(c, fiber.StatusBadRequest, "Email is already taken", nil)
		}
		updates["email"] = input.Email
	}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Gender != "" {
		updates["gender"] = input.Gender
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
	}

	var user models.User
	if err := db.First(&user, "id = ?", actorID).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusNotFound, "User not found", err)
	}
	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update profile", err)
		}
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Profile updated", user)
}

// TogglePrivate flips the owner's private flag. Pending requests and
// existing followers are untouched; the new setting only gates future
// follow attempts and reads.
func TogglePrivate(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	profileID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid user_id format", err)
	}
	if profileID != actorID {
		return helpers.HandleServiceError(c, "Not authorized to modify this profile", helpers.ErrUnauthorized)
	}

	var user models.User
	if err := db.First(&user, "id = ?", actorID).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusNotFound, "User not found", err)
	}

	if err := db.Model(&user).Update("is_private", !user.IsPrivate).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to toggle private mode", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Privacy updated", fiber.Map{
		"is_private": !user.IsPrivate,
	})
}

type changePasswordInput struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func ChangePassword(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	var input changePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Invalid input data", err)
	}
	if err := helpers.Validate(input); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "All password fields are required and the new password must be at least 6 characters", err)
	}
	if input.NewPassword != input.ConfirmPassword {
		return helpers.HandleError(c, fiber.StatusBadRequest, "New password and confirm password do not match", nil)
	}
	if input.NewPassword == input.OldPassword {
		return helpers.HandleError(c, fiber.StatusBadRequest, "New password must be different from old password", nil)
	}

	var user models.User
	if err := db.First(&user, "id = ?", actorID).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusNotFound, "User not found", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Current password is incorrect", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update password", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Password changed successfully", nil)
}

func UploadProfilePhoto(c *fiber.Ctx) error {
	db := database.DB

	actorID, err := helpers.ActorID(c)
	if err != nil {
		return helpers.HandleServiceError(c, "Invalid or missing user_id", err)
	}

	media, err := c.FormFile("profile_pic")
	if err != nil {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Profile picture is required", err)
	}

	mediaContent, err := media.Open()
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to open media file", err)
	}
	defer mediaContent.Close()

	fileName := uuid.New().String() + filepath.Ext(media.Filename)
	mediaURL, err := database.UploadMedia(fileName, mediaContent, media.Header.Get("Content-Type"))
	if err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to upload media", err)
	}

	if err := db.Model(&models.User{}).Where("id = ?", actorID).
		Update("profile_pic", mediaURL).Error; err != nil {
		return helpers.HandleError(c, fiber.StatusInternalServerError, "Failed to update profile picture", err)
	}

	return helpers.HandleSuccess(c, fiber.StatusOK, "Profile photo updated", fiber.Map{
		"profile_pic": mediaURL,
	})
}
