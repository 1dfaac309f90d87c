package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Data Transfer Objects

type LoginRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type CreateStudentRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=255"`
	GroupID *string `json:"group_id" validate:"omitempty,uuid"`
	Login   *string `json:"login" validate:"omitempty,min=3,max=50"`
}

type CreateStudentResponse struct {
	Student *User `json:"student"`
	// Plaintext credentials, returned once on creation.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type UpdateStudentRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=255"`
	GroupID  *string `json:"group_id" validate:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

type GiveCoinsRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required,min=2,max=200"`
}

type GiveCoinsResponse struct {
	Transaction *CoinTransaction `json:"transaction"`
	NewBalance  decimal.Decimal  `json:"new_balance"`
}

type ResetPasswordResponse struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type PasswordInfoResponse struct {
	Login    string  `json:"login"`
	Password *string `json:"password,omitempty"`
}

type StudentListItem struct {
	User
	GroupName         string `json:"group_name"`
	Level             string `json:"level"`
	AttendancePercent int    `json:"attendance_percent"`
}

type StudentDetailResponse struct {
	Student          *User                    `json:"student"`
	GroupName        string                   `json:"group_name"`
	Level            string                   `json:"level"`
	CoinsToNextLevel decimal.Decimal          `json:"coins_to_next_level"`
	Transactions     []TransactionWithTeacher `json:"transactions"`
	Attendance       *AttendanceSummary       `json:"attendance"`
}

type AttendanceSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Percent int `json:"percent"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

type SaveAttendanceRequest struct {
	GroupID string            `json:"group_id" validate:"required,uuid"`
	Date    string            `json:"date" validate:"required"` // 2006-01-02
	Records []AttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

type SaveAttendanceResponse struct {
	Count   int `json:"count"`
	Awarded int `json:"awarded"`
}

type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description string     `json:"description" validate:"max=1000"`
	GroupIDs    []string   `json:"group_ids" validate:"required,min=1,dive,uuid"`
	StartDate   time.Time  `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description string     `json:"description" validate:"max=1000"`
	GroupIDs    []string   `json:"group_ids" validate:"required,min=1,dive,uuid"`
	StartDate   time.Time  `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	IsActive    bool       `json:"is_active"`
}

type ReviewSubmissionRequest struct {
	CoinsGiven decimal.Decimal `json:"coins_given"`
	// Adjust allows changing an already-awarded review; the difference is
	// issued as a separate ledger entry.
	Adjust bool `json:"adjust"`
}

type ReviewSubmissionResponse struct {
	Submission *Submission `json:"submission"`
	// Transaction is set only when this review actually moved coins.
	Transaction *CoinTransaction `json:"transaction,omitempty"`
	NewBalance  decimal.Decimal  `json:"new_balance"`
}

type CreateRewardRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
	Price       int    `json:"price" validate:"required,min=1,max=10000"`
	Category    string `json:"category" validate:"required,oneof=kichik oqish imtiyoz"`
	Icon        string `json:"icon" validate:"max=20"`
}

type UpdateShopSettingsRequest struct {
	IsOpen    bool       `json:"is_open"`
	OpenDate  *time.Time `json:"open_date"`
	CloseDate *time.Time `json:"close_date"`
}

type RedeemRequest struct {
	RewardID string `json:"reward_id" validate:"required,uuid"`
}

type RedeemResponse struct {
	Transaction *CoinTransaction `json:"transaction"`
	NewBalance  decimal.Decimal  `json:"new_balance"`
	Reward      *Reward          `json:"reward"`
}

type ShopResponse struct {
	Settings *ShopSettings `json:"settings"`
	Rewards  []Reward      `json:"rewards"`
}

type ShopForStudentResponse struct {
	Settings *ShopSettings      `json:"settings"`
	Rewards  []RewardForStudent `json:"rewards"`
	Balance  decimal.Decimal    `json:"balance"`
}

type ProfileResponse struct {
	User      *User  `json:"user"`
	GroupName string `json:"group_name,omitempty"`
	Level     string `json:"level,omitempty"`
}

type UpdateProfileRequest struct {
	AvatarIcon  *string `json:"avatar_icon" validate:"omitempty,oneof=robot1 robot2 rocket star fire lightning gem crown ninja alien ghost dragon"`
	AvatarColor *string `json:"avatar_color" validate:"omitempty,oneof=blue purple green orange cyan rose amber slate"`
	Bio         *string `json:"bio" validate:"omitempty,max=100"`
}

type UploadAvatarRequest struct {
	// Base64 payload, optionally prefixed with a data URL header.
	Image string `json:"image" validate:"required"`
}

type SendMessageRequest struct {
	ToUserID string `json:"to_user_id" validate:"required,uuid"`
	Text     string `json:"text" validate:"required,min=1,max=1000"`
}

type UploadAvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type RankingEntry struct {
	Rank       int             `json:"rank"`
	StudentID  string          `json:"student_id"`
	Name       string          `json:"name"`
	TotalCoins decimal.Decimal `json:"total_coins"`
	Level      string          `json:"level"`
}

type WeeklyRankingEntry struct {
	Rank        int             `json:"rank"`
	StudentID   string          `json:"student_id"`
	Name        string          `json:"name"`
	WeeklyCoins decimal.Decimal `json:"weekly_coins"`
}

type TeacherDashboardResponse struct {
	TotalStudents   int              `json:"total_students"`
	CoinsGivenToday decimal.Decimal  `json:"coins_given_today"`
	TopStudents     []RankingEntry   `json:"top_students"`
	Groups          []GroupWithCount `json:"groups"`
}

type StudentDashboardResponse struct {
	Student           *User                   `json:"student"`
	GroupName         string                  `json:"group_name"`
	Level             string                  `json:"level"`
	CoinsToNextLevel  decimal.Decimal         `json:"coins_to_next_level"`
	GlobalRank        int                     `json:"global_rank"`
	GlobalTotal       int                     `json:"global_total"`
	GroupRank         int                     `json:"group_rank"`
	GroupTotal        int                     `json:"group_total"`
	TopGlobal         []RankingEntry          `json:"top_global"`
	TopGroup          []RankingEntry          `json:"top_group"`
	AttendancePercent int                     `json:"attendance_percent"`
	LastTransaction   *TransactionWithTeacher `json:"last_transaction,omitempty"`
}
