package apperrors

var (
	// Identity
	ErrUserNotFound        = NotFound("user not found")
	ErrEmailTaken          = Conflict("email already in use")
	ErrInvalidCredentials  = Unauthenticated("invalid credentials")
	ErrEmailNotVerified    = Forbidden("email not verified, please check your inbox")
	ErrInvalidVerifyToken  = InvalidInput("invalid or expired verification token")
	ErrInvalidResetToken   = InvalidInput("invalid or expired reset token")
	ErrResetTokenExpired   = InvalidInput("reset token has expired")
	ErrMissingRegistration = InvalidInput("email, name and password are required")

	// Friend requests and friendships
	ErrSelfRequest          = InvalidInput("cannot send a friend request to yourself")
	ErrAlreadyFriends       = Conflict("you are already friends with this user")
	ErrRequestPending       = Conflict("a pending friend request already exists between you and this user")
	ErrRequestNotFound      = NotFound("friend request not found")
	ErrRequestNotRecipient  = Forbidden("only the recipient can respond to this friend request")
	ErrRequestProcessed     = Conflict("friend request has already been processed")
	ErrFriendshipNotFound   = NotFound("friendship not found")
	ErrNotFriends           = Forbidden("you can only message your friends")
	ErrInvalidReceiver      = InvalidInput("a valid receiver distinct from the sender is required")
	ErrEmptyMessage         = InvalidInput("message text or attachment is required")
	ErrMessageNotFound      = NotFound("message not found")
	ErrAttachmentForbidden  = Forbidden("you do not have access to this attachment")
	ErrAttachmentNotFound   = NotFound("attachment not found")
	ErrNotificationNotFound = NotFound("notification not found")

	// Groups
	ErrGroupNameRequired    = InvalidInput("group name is required")
	ErrGroupMembersRequired = InvalidInput("at least one member email is required")
	ErrGroupNotFound        = NotFound("group not found")
	ErrNotGroupMember       = Forbidden("you are not a member of this group")
	ErrNotGroupCreator      = Forbidden("only the group creator can delete the group")
	ErrMembershipNotFound   = NotFound("you are not a member of this group")
	ErrEmptyGroupMessage    = InvalidInput("message text is required")
)
